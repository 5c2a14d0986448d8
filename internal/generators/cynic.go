package generators

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/crucial707/mailprobe/internal/models"
)

// cynicPassword protects the generated archives. It is intentionally weak
// and stated in the email body: the point is exercising mail-gateway
// handling of encrypted archives, not secrecy.
const cynicPassword = "password"

const cynicSubject = "This is a important top secret email!"

const vbsTemplate = `' v2019.06.18
' This is a test sample to exercise behavioural detection in Symantec Cynic Dynamic Malware Analysis Service
' For any questions about this sample please contact: xxxx@symantec.com
' For more documentation about this sample please refer to this: https://*.symantec.com/location

messageText = "This is a test sample to exercise behavioural detection in Symantec Cynic Dynamic Malware Analysis Service"

Set fileSystemObject=CreateObject("Scripting.FileSystemObject")
fileName="C:\Windows\Temp\cynic_test_sample.txt"
Set file = fileSystemObject.CreateTextFile(fileName,True)
file.Write messageText
file.Close

Set wscriptShell = CreateObject( "WScript.Shell" )
wscriptShell.RegWrite "HKCU\cynic_test\", ""
wscriptShell.RegWrite "HKCU\cynic_test\cynic_test_sample", messageText, "REG_SZ"

'This is the addition of some stuff to change the hash
' -
`

// Cynic builds count messages, each with a freshly generated VBS sample
// packed into a password-protected 7z archive. The archive is produced by
// the external 7z binary; without it the generator fails with a clear
// error instead of sending unprotected samples.
func (g *Generator) Cynic(ctx context.Context, req Request) ([]models.Email, error) {
	sevenZip := g.SevenZipPath
	if sevenZip == "" {
		sevenZip = "7z"
	}
	if _, err := exec.LookPath(sevenZip); err != nil {
		return nil, fmt.Errorf("7z binary not found (%s): install p7zip or set SEVENZIP_PATH", sevenZip)
	}

	emails := make([]models.Email, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		timestamp := g.clock().Unix() + int64(i)
		archive, err := g.buildArchive(ctx, sevenZip, timestamp)
		if err != nil {
			return nil, err
		}
		emails = append(emails, models.Email{
			Subject:    fmt.Sprintf("%s %d", cynicSubject, timestamp),
			Body:       fmt.Sprintf("The contents of this attachment are so important I had to password protect it! The password is %s\n%d", cynicPassword, timestamp),
			Recipients: req.Recipients,
			Attachments: []models.Attachment{{
				Filename: fmt.Sprintf("cynictest%d.7z", timestamp),
				Content:  archive,
			}},
		})
	}
	return emails, nil
}

// buildArchive writes a unique VBS sample to a scratch directory, packs it
// with header encryption, and returns the archive bytes. The scratch
// directory is removed before returning.
func (g *Generator) buildArchive(ctx context.Context, sevenZip string, timestamp int64) ([]byte, error) {
	dir, err := os.MkdirTemp("", "cynic")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	vbsPath := filepath.Join(dir, fmt.Sprintf("cynictest%d.vbs", timestamp))
	if err := os.WriteFile(vbsPath, []byte(vbsContent(timestamp)), 0o600); err != nil {
		return nil, fmt.Errorf("write vbs sample: %w", err)
	}

	archivePath := filepath.Join(dir, fmt.Sprintf("cynictest%d.7z", timestamp))
	cmdCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// 7z a -t7z -mhe=on -ppassword out.7z in.vbs
	cmd := exec.CommandContext(cmdCtx, sevenZip, "a", "-t7z", "-mhe=on",
		"-p"+cynicPassword, archivePath, vbsPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("7z failed: %v: %s", err, out)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}

// vbsContent appends the timestamp and a random id so every sample hashes
// differently.
func vbsContent(timestamp int64) string {
	var buf [8]byte
	rand.Read(buf[:])
	randomID := binary.BigEndian.Uint64(buf[:])
	return fmt.Sprintf("%s'cynictest%d.vbs\n' random_id=%d\n", vbsTemplate, timestamp, randomID)
}
