package entity

// Label is a single candidate returned by the labeling service.
type Label struct {
	Name       string
	Confidence float32 // percent, 0..100
}

// LabelResult is what the worker wrote for one object.
type LabelResult struct {
	ImageID string
	Status  Status
	Tags    []string
}
