package models

// Email is one fully-formed message ready for the SMTP transport.
type Email struct {
	Subject     string
	Body        string
	Recipients  []string
	DisplayName string
	Attachments []Attachment
}

// Attachment is an in-memory file attached to an Email.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendResult reports the outcome of one generate-and-send operation.
// Success is true only when every generated email was delivered.
type SendResult struct {
	Success bool     `json:"success"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}
