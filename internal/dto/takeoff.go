package dto

// RewriteRequest asks for extracted text to be expanded into a report.
type RewriteRequest struct {
	Text     string `json:"text" binding:"required"`
	FileName string `json:"fileName"`
}

// EnhancedTextRequest stores enhanced text against a record.
type EnhancedTextRequest struct {
	EnhancedText string `json:"enhanced_text" binding:"required"`
}

// ExportRequest selects the report format.
type ExportRequest struct {
	Format string `json:"format"`
}
