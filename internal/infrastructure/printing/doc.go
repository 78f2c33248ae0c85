// Package printing renders the portal's PDF documents: the payment receipt
// sent when a payment is accepted and the examination permit.
//
// Documents are html/template files under templates/ rendered by a
// TemplateEngine, then printed to PDF by a PDFRenderer. ChromedpRenderer
// drives headless Chrome over the DevTools protocol.
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	docs := NewDocumentService(NewTemplateEngine(), renderer, PaperSizeA4, logger)
//	pdf, err := docs.RenderPermit(ctx, data)
package printing
