package qrcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theLivingSofa/parking-management/internal/apperr"

	"github.com/google/uuid"
	qr "github.com/skip2/go-qrcode"
)

// Generator produces the unique token for a vehicle and persists the
// scannable PNG artifact that encodes it.
type Generator struct {
	Dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{Dir: dir}
}

// Generate builds a token from the alphanumeric part of the license plate
// plus a fresh UUID fragment, writes <dir>/<token>.png and returns both.
// The caller is responsible for checking the token against existing
// vehicles before committing, and for removing the file if its
// transaction fails.
func (g *Generator) Generate(licensePlate string) (token string, filePath string, err error) {
	safePlate := sanitizePlate(licensePlate)
	if safePlate == "" {
		return "", "", fmt.Errorf("license plate is required: %w", apperr.ErrValidation)
	}

	token = fmt.Sprintf("%s-%s", safePlate, uuid.NewString()[:8])

	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create qr code dir: %v: %w", err, apperr.ErrGeneration)
	}

	// token is alphanumeric plus a dash, safe as a file name
	filePath = filepath.Join(g.Dir, token+".png")
	if err := qr.WriteFile(token, qr.Medium, 256, filePath); err != nil {
		return "", "", fmt.Errorf("write qr code image: %v: %w", err, apperr.ErrGeneration)
	}
	return token, filePath, nil
}

// sanitizePlate keeps only letters and digits, uppercased.
func sanitizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(plate)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
