package generators

import (
	"fmt"

	"github.com/crucial707/mailprobe/internal/models"
)

// GTUBEString is the standard anti-spam test string.
const GTUBEString = "XJS*C4JDBQADN1.NSBN3*2IDNEN*GTUBE-STANDARD-ANTI-UBE-TEST-EMAIL*C.34X"

const gtubeSubject = "GTUBE Spam Test Email"

// GTUBE builds count messages with the GTUBE string in the body.
func (g *Generator) GTUBE(req Request) ([]models.Email, error) {
	body := fmt.Sprintf(`This email contains the GTUBE spam-test string.

The GTUBE string is used to verify spam detection pipelines. It is safe and not malicious.

GTUBE Test String:
%s

If this message is received, your outgoing mail controls are functioning as expected.`, GTUBEString)

	emails := make([]models.Email, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		subject := gtubeSubject
		if req.Count > 1 {
			subject = fmt.Sprintf("%s - %d", gtubeSubject, i+1)
		}
		emails = append(emails, models.Email{
			Subject:    subject,
			Body:       body,
			Recipients: req.Recipients,
		})
	}
	return emails, nil
}
