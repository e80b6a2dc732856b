// Package certificate issues tax exemption certificates and their
// verification QR codes.
package certificate

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/messages"
	"donorcrm/pkg/zip"
)

const (
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	numberLength   = 8
	// createAttempts bounds retries after a generated number collides.
	createAttempts = 3
	// qrModulePixels is the PNG size of one QR module.
	qrModulePixels = 8
)

// NameSource generates document names from a naming series.
type NameSource interface {
	Next(ctx context.Context, series string, vars map[string]string) (string, error)
}

// FileStore caches generated QR images.
type FileStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

type Service struct {
	repo    domain.CertificateRepository
	names   NameSource
	files   FileStore
	siteURL string
	logger  infra.Logger
	now     func() time.Time
	random  io.Reader
}

func NewService(repo domain.CertificateRepository, names NameSource, files FileStore, siteURL string, logger infra.Logger) *Service {
	return &Service{
		repo:    repo,
		names:   names,
		files:   files,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
		now:     time.Now,
		random:  rand.Reader,
	}
}

// Create stores a certificate, generating its name, number and timestamp
// when they are absent.
func (s *Service) Create(ctx context.Context, cert domain.Certificate) (*domain.Certificate, error) {
	if strings.TrimSpace(cert.Donor) == "" {
		return nil, domain.Invalid("donor", "donor is required")
	}
	if cert.TotalDonation < 0 {
		return nil, domain.Invalid("total_donation", "total donation cannot be negative")
	}
	if cert.Name == "" {
		name, err := s.names.Next(ctx, domain.CertificateNamingSeries, nil)
		if err != nil {
			return nil, err
		}
		cert.Name = name
	}
	if cert.GeneratedTimestamp.IsZero() {
		cert.GeneratedTimestamp = s.now().UTC()
	}

	generated := cert.CertificateNumber == ""
	for attempt := 1; ; attempt++ {
		if generated {
			number, err := s.newNumber()
			if err != nil {
				return nil, err
			}
			cert.CertificateNumber = number
		}
		err := s.repo.Create(ctx, &cert)
		if err == nil {
			break
		}
		if !generated || !errors.Is(err, domain.ErrDuplicate) || attempt == createAttempts {
			return nil, fmt.Errorf("certificate %s: %w", cert.Name, err)
		}
		s.logger.Warn().Str("certificate_number", cert.CertificateNumber).Msg("certificate: number collision, regenerating")
	}
	s.logger.Info().Str("certificate", cert.Name).Str("number", cert.CertificateNumber).Msg("certificate: issued")
	return &cert, nil
}

// newNumber draws CERT- plus eight characters from A-Z0-9 without modulo
// bias.
func (s *Service) newNumber() (string, error) {
	const limit = 256 - 256%len(numberAlphabet)
	out := make([]byte, 0, numberLength)
	buf := make([]byte, numberLength*2)
	for len(out) < numberLength {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", fmt.Errorf("certificate number: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, numberAlphabet[int(b)%len(numberAlphabet)])
			if len(out) == numberLength {
				break
			}
		}
	}
	return domain.CertificatePrefix + string(out), nil
}

func (s *Service) Get(ctx context.Context, name string) (*domain.Certificate, error) {
	return s.repo.GetByName(ctx, name)
}

// VerifyURL is the public page a certificate QR code points to.
func (s *Service) VerifyURL(name string) string {
	return s.siteURL + "/crm/tax-exemption-certificates/" + url.PathEscape(name)
}

// QRCode returns the PNG QR code of a certificate, generating and caching
// it on first use.
func (s *Service) QRCode(ctx context.Context, name string) ([]byte, error) {
	if _, err := s.repo.GetByName(ctx, name); err != nil {
		return nil, err
	}
	key := "certificates/qr/" + name + ".png"
	if s.files != nil {
		data, err := s.files.Read(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("key", key).Msg("certificate: qr cache read failed")
		}
	}

	qr, err := qrcode.New(s.VerifyURL(name), qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("certificate %s qr: %w", name, err)
	}
	png, err := qr.PNG(-qrModulePixels)
	if err != nil {
		return nil, fmt.Errorf("certificate %s qr: %w", name, err)
	}
	if s.files != nil {
		if _, err := s.files.Write(ctx, key, png); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("certificate: qr cache write failed")
		}
	}
	return png, nil
}

// QRDataURI returns the QR code as a base64 PNG data URI.
func (s *Service) QRDataURI(ctx context.Context, name string) (string, error) {
	png, err := s.QRCode(ctx, name)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ExportQRCodes zips the QR codes of names, one "<name>.png" per entry.
func (s *Service) ExportQRCodes(ctx context.Context, names []string) ([]byte, error) {
	var entries []zip.Entry
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		png, err := s.QRCode(ctx, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, zip.Entry{Name: name + ".png", Data: png, Modified: s.now()})
	}
	if len(entries) == 0 {
		return nil, domain.Invalid("names", "at least one certificate is required")
	}
	return zip.Archive(entries)
}

// Verify looks a certificate up by its number.
func (s *Service) Verify(ctx context.Context, number string) (domain.CertificateVerification, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.CertificateVerification{Valid: false, Message: messages.CertificateNotFound}, nil
	}
	cert, err := s.repo.GetByNumber(ctx, number)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.CertificateVerification{Valid: false, Message: messages.CertificateNotFound}, nil
	}
	if err != nil {
		return domain.CertificateVerification{}, err
	}
	return domain.CertificateVerification{Valid: true, Certificate: cert}, nil
}
