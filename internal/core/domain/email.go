package domain

// EmailMessage is a rendered outgoing email. It is also the payload of the mail queue.
type EmailMessage struct {
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	HTML    string            `json:"html,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}
