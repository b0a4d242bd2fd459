package models

import "time"

// TakeOffRecord is the flat analysis_results row as stored by the external
// database service. The id is caller-supplied (the Drive file id of the
// uploaded document), not generated server-side.
type TakeOffRecord struct {
	ID              string     `db:"id" json:"id" validate:"required"`
	FileName        string     `db:"file_name" json:"file_name" validate:"required"`
	FileSize        int64      `db:"file_size" json:"file_size"`
	Company         string     `db:"company" json:"company,omitempty"`
	Jobsite         string     `db:"jobsite" json:"jobsite,omitempty"`
	BlueXShapes     int        `db:"blue_x_shapes" json:"blue_x_shapes"`
	RedSquares      int        `db:"red_squares" json:"red_squares"`
	PinkShapes      int        `db:"pink_shapes" json:"pink_shapes"`
	GreenRectangles int        `db:"green_rectangles" json:"green_rectangles"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	OriginalURL     string     `db:"original_url" json:"original_url,omitempty"`
	Step4ResultsURL string     `db:"step4_results_url" json:"step4_results_url,omitempty"`
	Step5ResultsURL string     `db:"step5_results_url" json:"step5_results_url,omitempty"`
	Step6ResultsURL string     `db:"step6_results_url" json:"step6_results_url,omitempty"`
	Step7ResultsURL string     `db:"step7_results_url" json:"step7_results_url,omitempty"`
	Step8ResultsURL string     `db:"step8_results_url" json:"step8_results_url,omitempty"`
	ExtractedText   string     `db:"extracted_text" json:"extracted_text,omitempty"`
	EnhancedText    string     `db:"enhanced_text" json:"enhanced_text,omitempty"`
}

// TotalDetections sums the per-shape counters.
func (r *TakeOffRecord) TotalDetections() int {
	return r.BlueXShapes + r.RedSquares + r.PinkShapes + r.GreenRectangles
}

// StepResults carries the per-step shape counts of the analysis pipeline.
type StepResults struct {
	Step5BlueXShapes     int `json:"step5_blue_X_shapes"`
	Step6RedSquares      int `json:"step6_red_squares"`
	Step7PinkShapes      int `json:"step7_pink_shapes"`
	Step8GreenRectangles int `json:"step8_green_rectangles"`
}

// CloudinaryURLs points at the generated stage images.
type CloudinaryURLs struct {
	Original     string `json:"original"`
	Step4Results string `json:"step4_results"`
	Step5Results string `json:"step5_results"`
	Step6Results string `json:"step6_results"`
	Step7Results string `json:"step7_results"`
	Step8Results string `json:"step8_results"`
}

// AnalysisDetails is the nested results block produced by the analyzer.
type AnalysisDetails struct {
	StepResults    StepResults    `json:"step_results"`
	CloudinaryURLs CloudinaryURLs `json:"cloudinary_urls"`
	ExtractedText  string         `json:"extracted_text"`
}

// AnalysisResponse is the analyzer payload. Older server revisions return the
// step counts, image URLs and extracted text at the top level instead of under
// results; Normalize folds both shapes into the nested canonical form.
type AnalysisResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	PDFPath  string `json:"pdf_path,omitempty"`
	PDFSize  int64  `json:"pdf_size,omitempty"`
	SVGPath  string `json:"svg_path,omitempty"`
	SVGSize  int64  `json:"svg_size,omitempty"`

	Results *AnalysisDetails `json:"results,omitempty"`

	// Flattened variant fields, consumed by Normalize only.
	FlatStepResults    *StepResults    `json:"step_results,omitempty"`
	FlatCloudinaryURLs *CloudinaryURLs `json:"cloudinary_urls,omitempty"`
	FlatExtractedText  string          `json:"extracted_text,omitempty"`

	// Company and jobsite are attached by the upload flow, not the analyzer.
	Company string `json:"company,omitempty"`
	Jobsite string `json:"jobsite,omitempty"`
}

// Normalize collapses the flattened response variant into the nested one so
// downstream consumers only ever see a single canonical shape.
func (a *AnalysisResponse) Normalize() {
	if a == nil || a.Results != nil {
		return
	}
	if a.FlatStepResults == nil && a.FlatCloudinaryURLs == nil && a.FlatExtractedText == "" {
		return
	}
	details := &AnalysisDetails{ExtractedText: a.FlatExtractedText}
	if a.FlatStepResults != nil {
		details.StepResults = *a.FlatStepResults
	}
	if a.FlatCloudinaryURLs != nil {
		details.CloudinaryURLs = *a.FlatCloudinaryURLs
	}
	a.Results = details
	a.FlatStepResults = nil
	a.FlatCloudinaryURLs = nil
	a.FlatExtractedText = ""
}

// Detail is the nested view served to results consumers, reshaped from a
// flat database row.
type Detail struct {
	ID       string          `json:"id"`
	FileName string          `json:"file_name"`
	Status   string          `json:"status"`
	PDFSize  int64           `json:"pdf_size"`
	Message  string          `json:"message"`
	Company  string          `json:"company,omitempty"`
	Jobsite  string          `json:"jobsite,omitempty"`
	Results  AnalysisDetails `json:"results"`

	EnhancedText string `json:"enhanced_text,omitempty"`
}

// DetailFromRecord reshapes a flat analysis_results row into the nested
// structure the results viewer expects. Pure transform, no I/O.
func DetailFromRecord(r *TakeOffRecord) *Detail {
	return &Detail{
		ID:       r.ID,
		FileName: r.FileName,
		Status:   r.Status,
		PDFSize:  r.FileSize,
		Message:  "Analysis completed",
		Company:  r.Company,
		Jobsite:  r.Jobsite,
		Results: AnalysisDetails{
			StepResults: StepResults{
				Step5BlueXShapes:     r.BlueXShapes,
				Step6RedSquares:      r.RedSquares,
				Step7PinkShapes:      r.PinkShapes,
				Step8GreenRectangles: r.GreenRectangles,
			},
			CloudinaryURLs: CloudinaryURLs{
				Original:     r.OriginalURL,
				Step4Results: r.Step4ResultsURL,
				Step5Results: r.Step5ResultsURL,
				Step6Results: r.Step6ResultsURL,
				Step7Results: r.Step7ResultsURL,
				Step8Results: r.Step8ResultsURL,
			},
			ExtractedText: r.ExtractedText,
		},
		EnhancedText: r.EnhancedText,
	}
}

// RecordFromAnalysis flattens a normalized analyzer response into a storable
// row, preserving the caller-supplied id.
func RecordFromAnalysis(a *AnalysisResponse, fileSize int64, createdAt time.Time) *TakeOffRecord {
	rec := &TakeOffRecord{
		ID:        a.ID,
		FileName:  a.FileName,
		FileSize:  fileSize,
		Company:   a.Company,
		Jobsite:   a.Jobsite,
		Status:    a.Status,
		CreatedAt: createdAt,
	}
	if rec.Status == "" {
		rec.Status = "completed"
	}
	if a.Results != nil {
		rec.BlueXShapes = a.Results.StepResults.Step5BlueXShapes
		rec.RedSquares = a.Results.StepResults.Step6RedSquares
		rec.PinkShapes = a.Results.StepResults.Step7PinkShapes
		rec.GreenRectangles = a.Results.StepResults.Step8GreenRectangles
		rec.OriginalURL = a.Results.CloudinaryURLs.Original
		rec.Step4ResultsURL = a.Results.CloudinaryURLs.Step4Results
		rec.Step5ResultsURL = a.Results.CloudinaryURLs.Step5Results
		rec.Step6ResultsURL = a.Results.CloudinaryURLs.Step6Results
		rec.Step7ResultsURL = a.Results.CloudinaryURLs.Step7Results
		rec.Step8ResultsURL = a.Results.CloudinaryURLs.Step8Results
		rec.ExtractedText = a.Results.ExtractedText
	}
	return rec
}
