package epubdoc

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/tsawler/docproc/internal/ooxml"
)

// ErrDRMProtected is returned for books whose content documents are
// encrypted.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")

// encryptionXML represents the structure of META-INF/encryption.xml.
type encryptionXML struct {
	XMLName       xml.Name        `xml:"encryption"`
	EncryptedData []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	Method struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
	Reference struct {
		URI string `xml:"URI,attr"`
	} `xml:"CipherData>CipherReference"`
}

// checkForDRM rejects Adobe ADEPT books (rights.xml) and books whose
// encryption.xml covers content documents. Font obfuscation alone is allowed.
func checkForDRM(a *ooxml.Archive) error {
	if a.Has("META-INF/rights.xml") {
		return ErrDRMProtected
	}

	data, err := a.Read("META-INF/encryption.xml")
	if err != nil {
		return nil
	}

	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return ErrDRMProtected
	}
	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.Method.Algorithm) {
			continue
		}
		if isContentFile(ed.Reference.URI) {
			return ErrDRMProtected
		}
	}
	return nil
}

// isFontObfuscation matches the IDPF and Adobe font mangling algorithms.
func isFontObfuscation(algorithm string) bool {
	return strings.Contains(algorithm, "obfuscation") &&
		(strings.Contains(algorithm, "idpf.org") || strings.Contains(algorithm, "adobe.com"))
}

func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, ext := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, ext) {
			return true
		}
	}
	return false
}
