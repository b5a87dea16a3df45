package domain

type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimSubmitted ClaimStatus = "submitted"
	ClaimFailed    ClaimStatus = "failed"
)

// ValidClaimStatuses is the canonical set of accepted claim status strings.
var ValidClaimStatuses = map[ClaimStatus]bool{
	ClaimPending: true, ClaimSubmitted: true, ClaimFailed: true,
}

// RunSource records how a run was produced. Only played runs can be claimed.
type RunSource string

const (
	RunSourcePlay     RunSource = "play"
	RunSourceSimulate RunSource = "simulate"
)
