package detection

// ClassNames lists the detectable sediment classes in model output order.
var ClassNames = []string{
	"calcium_oxalate",
	"squamous_cells",
	"triple_phosphate",
	"uric_acid",
	"yeast",
}

const (
	// NumClasses is the number of class score rows in the output tensor.
	NumClasses = 5

	// MaxDetectionsPerClass caps the reported detections for one class.
	MaxDetectionsPerClass = 10

	// DefIoUThreshold is the overlap above which a box is suppressed.
	DefIoUThreshold = 0.45

	// DefConfidenceThreshold is used when the caller supplies none.
	DefConfidenceThreshold = 0.15

	// DefInputSize is the square input resolution of the stock model.
	DefInputSize = 640
)

// Detection is a single surviving box. BBox holds corner coordinates
// x1, y1, x2, y2 normalized to [0, 1].
type Detection struct {
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// ClassResult summarizes one class after suppression. Confidence is
// the arithmetic mean over kept detections, 0 when none survive.
type ClassResult struct {
	Present    bool        `json:"present"`
	Count      int         `json:"count"`
	Confidence float64     `json:"confidence"`
	Detections []Detection `json:"detections"`
}

// Report always carries exactly one ClassResult per known class.
type Report struct {
	Results      map[string]ClassResult `json:"results"`
	TotalObjects int                    `json:"total_objects"`
}
