package models

type SlotStatus string

const (
	SlotStatusReady      SlotStatus = "ready"
	SlotStatusProcessing SlotStatus = "processing"
)

type Slot struct {
	Index  int
	UnitID string
	Status SlotStatus
}

type PoolStatus struct {
	Size     int
	InFlight int
	Queued   int
	Slots    []Slot
}
