package aipocr

// Word is a single recognized text run with its bounding box in document
// points (top-left origin). The transport converts pixel boxes before
// returning, so callers never see pixel coordinates.
type Word struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

// TableCell is one cell of a recognized table. Spans are 1-based as produced
// by the service: the cell's text belongs at (RowStart, ColStart), and the
// maximum observed RowEnd/ColEnd give the grid extent.
type TableCell struct {
	RowStart int
	RowEnd   int
	ColStart int
	ColEnd   int
	Text     string
}

// TableOptions holds request knobs for table recognition.
type TableOptions struct {
	// CellContents asks the service to return line detail inside each cell.
	CellContents bool
}

// JSON shapes of the recognition endpoints. Every response either carries a
// non-zero error_code/error_msg pair or one of the result arrays.

type locationJSON struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type wordItemJSON struct {
	Words    string        `json:"words"`
	Location *locationJSON `json:"location"`
}

type tableCellJSON struct {
	RowStart int    `json:"row_start"`
	RowEnd   int    `json:"row_end"`
	ColStart int    `json:"col_start"`
	ColEnd   int    `json:"col_end"`
	Words    string `json:"words"`
}

type tableJSON struct {
	Body []tableCellJSON `json:"body"`
}

type recognizeResponseJSON struct {
	ErrorCode      int            `json:"error_code"`
	ErrorMsg       string         `json:"error_msg"`
	WordsResult    []wordItemJSON `json:"words_result"`
	FormulasResult []wordItemJSON `json:"formulas_result"`
	TablesResult   []tableJSON    `json:"tables_result"`
}

type tokenResponseJSON struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
