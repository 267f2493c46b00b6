package entity

type Status string

const (
	Pending   Status = "PENDING"
	Completed Status = "COMPLETED"
	Failed    Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed
}
