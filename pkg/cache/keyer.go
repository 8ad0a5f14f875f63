package cache

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// DatasetKey keys the raw bytes fetched from a remote location.
	DatasetKey(location string) string

	// ArtifactKey keys one rendered output of a dataset.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string

	// ChartKey keys an uploaded chart page by its id.
	ChartKey(id string) string
}

// ArtifactKeyOpts holds every render option that changes the output bytes.
type ArtifactKeyOpts struct {
	Format      string   `json:"format"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	MaxRecords  int      `json:"max_records"`
	Columns     []string `json:"columns,omitempty"`
	StaggerMS   int64    `json:"stagger_ms"`
	EntranceMS  int64    `json:"entrance_ms"`
	HoverMS     int64    `json:"hover_ms"`
	Ease        string   `json:"ease,omitempty"`
	LowColor    string   `json:"low_color,omitempty"`
	HighColor   string   `json:"high_color,omitempty"`
	ContainerID string   `json:"container_id,omitempty"`
	TooltipID   string   `json:"tooltip_id,omitempty"`
	Title       string   `json:"title,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DatasetKey hashes the location so arbitrary URLs are safe keys.
func (DefaultKeyer) DatasetKey(location string) string {
	return hashKey("dataset", location)
}

// ArtifactKey hashes the dataset hash together with the options.
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}

// ChartKey namespaces an upload id.
func (DefaultKeyer) ChartKey(id string) string { return "chart:" + id }
