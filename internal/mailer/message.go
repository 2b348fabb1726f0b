// Package mailer builds and delivers transactional email. Building is pure
// (deterministic text rendering); delivery goes through the Mailjet v3.1
// send API.
package mailer

// Address is a recipient or sender in Mailjet's wire format.
type Address struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

// Message is a single outbound email. Field names follow the Mailjet v3.1
// payload so the message marshals directly onto the wire.
type Message struct {
	From     Address   `json:"From"`
	To       []Address `json:"To"`
	Bcc      []Address `json:"Bcc,omitempty"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
	CustomID string    `json:"CustomID,omitempty"`
}

type sendRequest struct {
	SandboxMode bool      `json:"SandboxMode"`
	Messages    []Message `json:"Messages"`
}

// SendResult is the provider's parsed response.
type SendResult struct {
	Messages []MessageResult `json:"Messages"`
}

type MessageResult struct {
	Status string `json:"Status"`
}
