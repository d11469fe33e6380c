// Package service contains the business logic.
//
// It sits between the handler and transport layers. It receives validated
// data from the handler, renders the right template for the event kind,
// decides who the message goes to, and hands the finished message to the
// delivery transport.
package service
