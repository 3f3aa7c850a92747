// Package sii implementa los adaptadores hacia los formatos del Servicio de
// Impuestos Internos, en particular el parser del archivo CAF.
package sii

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/facturasur/dte-engine/internal/domain"
	"github.com/facturasur/dte-engine/internal/domain/dte"
)

// Estructura esperada del CAF:
//
//	<AUTORIZACION>
//	  <CAF version="1.0">
//	    <DA>
//	      <RE>...</RE> <RS>...</RS> <TD>39</TD>
//	      <RNG><D>1</D><H>100</H></RNG>
//	      <FA>2024-01-15</FA>
//	      <FV>2024-07-15</FV>            (opcional)
//	      <RSAPK><M>...</M><E>...</E></RSAPK>
//	    </DA>
//	    <FRMA algoritmo="SHA1withRSA">...</FRMA>
//	  </CAF>
//	  <RSASK>...</RSASK>                 (opcional)
//	  <RSAPUBK>...</RSAPUBK>             (opcional)
//	</AUTORIZACION>

const dateLayout = "2006-01-02"

// CAFParser parsea el XML de autorización de folios. Sin estado y sin efectos:
// el mismo input produce siempre el mismo CAFData.
type CAFParser struct{}

// NewCAFParser crea el parser.
func NewCAFParser() *CAFParser {
	return &CAFParser{}
}

// Parse valida y extrae los datos del CAF. Los errores de formato se reportan
// envolviendo domain.ErrInvalidCAF.
func (p *CAFParser) Parse(raw []byte) (*dte.CAFData, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: documento vacío", domain.ErrInvalidCAF)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: XML malformado: %v", domain.ErrInvalidCAF, err)
	}

	root := doc.SelectElement("AUTORIZACION")
	if root == nil {
		return nil, fmt.Errorf("%w: falta el elemento raíz AUTORIZACION", domain.ErrInvalidCAF)
	}
	da := root.FindElement("CAF/DA")
	if da == nil {
		return nil, fmt.Errorf("%w: falta el bloque CAF/DA", domain.ErrInvalidCAF)
	}

	tdText, err := requiredChildText(da, "TD")
	if err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(tdText)
	if err != nil {
		return nil, fmt.Errorf("%w: TD no numérico: %q", domain.ErrInvalidCAF, tdText)
	}
	docType, ok := dte.ParseDocumentType(code)
	if !ok {
		return nil, fmt.Errorf("%w: tipo de documento desconocido: %d", domain.ErrInvalidCAF, code)
	}

	rng := da.SelectElement("RNG")
	if rng == nil {
		return nil, fmt.Errorf("%w: falta el rango de folios RNG", domain.ErrInvalidCAF)
	}
	folioStart, err := requiredChildInt(rng, "D")
	if err != nil {
		return nil, err
	}
	folioEnd, err := requiredChildInt(rng, "H")
	if err != nil {
		return nil, err
	}
	if folioEnd < folioStart {
		return nil, fmt.Errorf("%w: rango invertido: D=%d H=%d", domain.ErrInvalidCAF, folioStart, folioEnd)
	}

	faText, err := requiredChildText(da, "FA")
	if err != nil {
		return nil, err
	}
	authDate, err := time.Parse(dateLayout, faText)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de autorización inválida: %q", domain.ErrInvalidCAF, faText)
	}

	data := &dte.CAFData{
		DocumentType:      docType,
		FolioStart:        folioStart,
		FolioEnd:          folioEnd,
		AuthorizationDate: authDate,
		EmitterRUT:        childText(da, "RE"),
		EmitterName:       childText(da, "RS"),
		PrivateKey:        childText(root, "RSASK"),
		PublicKey:         childText(root, "RSAPUBK"),
		RawXML:            string(raw),
	}

	// FV (vencimiento) es opcional, pero si viene debe ser una fecha válida.
	if fvText := childText(da, "FV"); fvText != "" {
		fv, err := time.Parse(dateLayout, fvText)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha de vencimiento inválida: %q", domain.ErrInvalidCAF, fvText)
		}
		data.ExpirationDate = &fv
	}

	if rsapk := da.SelectElement("RSAPK"); rsapk != nil {
		data.Modulus = childText(rsapk, "M")
		data.Exponent = childText(rsapk, "E")
	}

	return data, nil
}

func childText(el *etree.Element, name string) string {
	child := el.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func requiredChildText(el *etree.Element, name string) (string, error) {
	text := childText(el, name)
	if text == "" {
		return "", fmt.Errorf("%w: falta el campo obligatorio %s", domain.ErrInvalidCAF, name)
	}
	return text, nil
}

func requiredChildInt(el *etree.Element, name string) (int64, error) {
	text, err := requiredChildText(el, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s no numérico: %q", domain.ErrInvalidCAF, name, text)
	}
	return n, nil
}
