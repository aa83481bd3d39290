package model

// Mail is a single outgoing email.
type Mail struct {
	To      string
	Subject string
	Body    string
}
