package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

type encryptionXML struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		Method struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
		Reference struct {
			URI string `xml:"URI,attr"`
		} `xml:"CipherData>CipherReference"`
	} `xml:"EncryptedData"`
}

// checkDRM returns ErrDRMProtected when the archive carries Adobe ADEPT
// rights or encrypts content documents. An unreadable encryption.xml counts
// as protection.
func checkDRM(zr *zip.Reader) error {
	if findFile(zr, "META-INF/rights.xml") != nil {
		return ErrDRMProtected
	}
	f := findFile(zr, "META-INF/encryption.xml")
	if f == nil {
		return nil
	}
	var enc encryptionXML
	if err := decodeFile(f, &enc); err != nil {
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

// isFontObfuscation reports the Adobe and IDPF font mangling algorithms.
func isFontObfuscation(algorithm string) bool {
	return strings.Contains(algorithm, "obfuscation") &&
		(strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org"))
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
