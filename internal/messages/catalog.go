// Package messages holds the user-facing strings of the API in every
// supported language.
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	DonorCreated        = "Donor created successfully"
	DonorStatusUpdated  = "Status updated successfully"
	DonorDeleted        = "Donor deleted successfully"
	EmailsSent          = "Emails sent successfully (%d)"
	CertificateNotFound = "Certificate not found"
	DocumentNotFound    = "Document not found"
	AddressNotFound     = "Address not found"
	DonorNotFound       = "Donor not found"
	NotFound            = "%s %s not found"
	InvalidField        = "Invalid field"
	InvalidPayload      = "invalid payload"
	NotPermitted        = "You do not have permission to perform this action"
	MissingAuth         = "missing authorization"
	InvalidToken        = "invalid token"
	DonorBlocked        = "Donor is blocked"
	DonorBlockedAt      = "Row %d: donor %s is blocked"
	Duplicate           = "A record with the same value already exists"
	Linked              = "Cannot delete because it is linked with other documents"
	TooManyRequests     = "too many requests"
	Internal            = "Something went wrong"
	LayoutCreated       = "Donation Quick Entry layout created successfully"
	LayoutExists        = "Donation Quick Entry layout already exists"
)

var urdu = map[string]string{
	DonorCreated:        "ڈونر کامیابی سے بنا دیا گیا",
	DonorStatusUpdated:  "اسٹیٹس کامیابی سے تبدیل ہو گیا",
	DonorDeleted:        "ڈونر کامیابی سے حذف ہو گیا",
	EmailsSent:          "ای میلز کامیابی سے بھیج دی گئیں (%d)",
	CertificateNotFound: "سرٹیفکیٹ نہیں ملا",
	DocumentNotFound:    "دستاویز نہیں ملی",
	AddressNotFound:     "پتہ نہیں ملا",
	DonorNotFound:       "ڈونر نہیں ملا",
	NotFound:            "%s %s نہیں ملا",
	InvalidField:        "غلط فیلڈ",
	InvalidPayload:      "درخواست درست نہیں",
	NotPermitted:        "آپ کو یہ کام کرنے کی اجازت نہیں",
	MissingAuth:         "اجازت نامہ موجود نہیں",
	InvalidToken:        "ٹوکن درست نہیں",
	DonorBlocked:        "ڈونر بلاک ہے",
	DonorBlockedAt:      "قطار %d: ڈونر %s بلاک ہے",
	Duplicate:           "یہ ریکارڈ پہلے سے موجود ہے",
	Linked:              "دیگر دستاویزات سے منسلک ہونے کی وجہ سے حذف نہیں ہو سکتا",
	TooManyRequests:     "بہت زیادہ درخواستیں",
	Internal:            "کچھ غلط ہو گیا",
	LayoutCreated:       "ڈونیشن کوئیک انٹری لے آؤٹ بن گیا",
	LayoutExists:        "ڈونیشن کوئیک انٹری لے آؤٹ پہلے سے موجود ہے",
}

// Supported lists the response languages; the first is the fallback.
var Supported = []language.Tag{language.English, language.Urdu}

var (
	matcher = language.NewMatcher(Supported)
	cat     = build()
	known   = map[string]bool{}
)

func build() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range urdu {
		known[key] = true
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Urdu, key, text)
	}
	return b
}

// Match picks the supported language for a list of preferences such as an
// X-Locale value followed by an Accept-Language header. Unparseable entries
// are skipped.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Printer returns a printer for locale, a BCP 47 string such as "ur".
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(cat))
}

// Translate renders key in locale. Keys outside the catalog, such as
// validation messages built at runtime, are returned verbatim.
func Translate(locale, key string, args ...any) string {
	if !known[key] {
		return key
	}
	return Printer(locale).Sprintf(key, args...)
}
