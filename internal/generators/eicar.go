package generators

import (
	"fmt"

	"github.com/crucial707/mailprobe/internal/models"
)

// EICARString is the standard antivirus test file content.
const EICARString = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

const eicarSubject = "EICAR Test File"

const eicarBody = `This email contains an EICAR test file attachment.

The EICAR test file is a standard test file used to verify antivirus software is working correctly. It is not a real virus and is completely safe.

This is a test email generated for security testing purposes.`

// EICAR builds count messages each carrying the EICAR string as an
// eicar.com attachment.
func (g *Generator) EICAR(req Request) ([]models.Email, error) {
	emails := make([]models.Email, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		subject := eicarSubject
		if req.Count > 1 {
			subject = fmt.Sprintf("%s - %d", eicarSubject, i+1)
		}
		emails = append(emails, models.Email{
			Subject:    subject,
			Body:       eicarBody,
			Recipients: req.Recipients,
			Attachments: []models.Attachment{{
				Filename: "eicar.com",
				Content:  []byte(EICARString),
			}},
		})
	}
	return emails, nil
}
