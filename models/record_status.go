package models

type RecordStatus string

const (
	RecordStatusDraft    RecordStatus = "DRAFT"
	RecordStatusPending  RecordStatus = "PENDING_APPROVAL"
	RecordStatusApproved RecordStatus = "APPROVED"
	RecordStatusRejected RecordStatus = "REJECTED"

	// LegacyRecordStatusPending - старое значение статуса, встречается в данных
	LegacyRecordStatusPending RecordStatus = "PENDING"
)

var recordStatusHumanName = map[RecordStatus]string{
	RecordStatusDraft:    "Draft",
	RecordStatusPending:  "Pending approval",
	RecordStatusApproved: "Approved",
	RecordStatusRejected: "Rejected",
}

func (s RecordStatus) ToHuman() string {
	if human, exist := recordStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

// Normalize приводит легаси статус к актуальному
func (s RecordStatus) Normalize() RecordStatus {
	if s == LegacyRecordStatusPending {
		return RecordStatusPending
	}
	return s
}

func (s RecordStatus) IsTerminal() bool {
	return s == RecordStatusApproved || s == RecordStatusRejected
}
