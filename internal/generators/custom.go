package generators

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/crucial707/mailprobe/internal/models"
)

// Custom builds count messages from operator-supplied subject and body,
// optionally carrying a harmless dummy attachment with a chosen extension.
func (g *Generator) Custom(req Request) ([]models.Email, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if req.Body == "" {
		return nil, fmt.Errorf("body is required")
	}

	var attachments []models.Attachment
	if req.AttachmentType != "" {
		att, err := dummyAttachment(req.AttachmentType)
		if err != nil {
			return nil, err
		}
		attachments = []models.Attachment{att}
	}

	emails := make([]models.Email, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		subject := req.Subject
		if req.Count > 1 {
			subject = fmt.Sprintf("%s - %d", req.Subject, i+1)
		}
		emails = append(emails, models.Email{
			Subject:     subject,
			Body:        req.Body,
			Recipients:  req.Recipients,
			DisplayName: req.DisplayName,
			Attachments: attachments,
		})
	}
	return emails, nil
}

// dummyAttachment produces a harmless file with the requested extension.
// Everything is benign content dressed up in a suspicious-looking name.
func dummyAttachment(extension string) (models.Attachment, error) {
	ext := strings.ToLower(extension)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	filename := "dummy" + ext

	switch ext {
	case ".zip":
		data, err := dummyZip()
		if err != nil {
			return models.Attachment{}, err
		}
		return models.Attachment{Filename: filename, Content: data}, nil
	case ".com":
		return models.Attachment{Filename: filename, Content: []byte(
			"REM This is a harmless test file with .com extension\n" +
				"REM Created for email testing purposes.\n" +
				"ECHO This file is safe and contains no executable code.\n")}, nil
	case ".scr":
		return models.Attachment{Filename: filename, Content: []byte(
			"REM This is a harmless test file with .scr extension\n" +
				"REM Created for email testing purposes.\n" +
				"REM Screen saver files (.scr) are executable, but this is just a text file.\n")}, nil
	case ".bat":
		return models.Attachment{Filename: filename, Content: []byte(
			"@echo off\n" +
				"REM This is a harmless test batch file\n" +
				"REM Created for email testing purposes.\n" +
				"echo This file is safe and contains no malicious code.\n" +
				"pause\n")}, nil
	case ".pdf":
		return models.Attachment{Filename: filename, Content: []byte(dummyPDF)}, nil
	default:
		return models.Attachment{Filename: filename, Content: []byte(fmt.Sprintf(
			"This is a harmless test file with %s extension.\nCreated for email testing purposes.\n", ext))}, nil
	}
}

func dummyZip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte("This is a harmless test ZIP file.\nCreated for email testing purposes.")); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const dummyPDF = `%PDF-1.4
1 0 obj
<<
/Type /Catalog
/Pages 2 0 R
>>
endobj
2 0 obj
<<
/Type /Pages
/Kids [3 0 R]
/Count 1
>>
endobj
3 0 obj
<<
/Type /Page
/Parent 2 0 R
/MediaBox [0 0 612 792]
/Contents 4 0 R
/Resources <<
/Font <<
/F1 <<
/Type /Font
/Subtype /Type1
/BaseFont /Helvetica
>>
>>
>>
>>
endobj
4 0 obj
<<
/Length 44
>>
stream
BT
/F1 12 Tf
100 700 Td
(Harmless test PDF) Tj
ET
endstream
endobj
xref
0 5
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
0000000317 00000 n
trailer
<<
/Size 5
/Root 1 0 R
>>
startxref
410
%%EOF`
