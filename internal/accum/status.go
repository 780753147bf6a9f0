package accum

// statusKey identifies a reject-reason table entry. An empty status matches
// any transaction response status.
type statusKey struct {
	status string
	reject string
}

// rejectReasons is the closed lookup table for payer reject codes. New codes
// get new entries here, not new branches in Status.
var rejectReasons = map[statusKey]string{
	{status: "", reject: "0F3"}:  "Accumulator Mismatch",
	{status: "E", reject: "081"}: "Duplicate Record",
}

// Status classifies an inbound record's transmission outcome. Records outside
// a response/reject ("DR") file are never flagged. Every DR record is flagged
// for review, including "A" acknowledgments, which carry no reason text; a
// recognized reject code maps to its reason and an unrecognized non-empty
// code passes through verbatim.
func Status(fileType, responseStatus, rejectCode string) (rejected bool, reason string) {
	if fileType != "DR" {
		return false, ""
	}
	if responseStatus == "A" {
		return true, ""
	}
	if r, ok := rejectReasons[statusKey{status: responseStatus, reject: rejectCode}]; ok {
		return true, r
	}
	if r, ok := rejectReasons[statusKey{status: "", reject: rejectCode}]; ok {
		return true, r
	}
	if rejectCode != "" {
		return true, rejectCode
	}
	return true, ""
}
