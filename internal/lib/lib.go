// Package lib acts as a library for modules that do not fit strictly into
// other layers.
//
// It contains the outbound email transports (Resend API and SMTP relay)
// and the iCalendar invite builder used for consultation confirmations.
package lib
