package runlog

// Entry is one line in the hash-chained JSONL run log.
// All fields are scalars (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	RunID      string `json:"run_id"`
	Datasource string `json:"datasource"`
	Databases  int    `json:"databases"`
	Tables     int    `json:"tables"`
	Findings   int    `json:"findings"`
	High       int    `json:"high"`
	Medium     int    `json:"medium"`
	Report     string `json:"report"`
	PrevHash   string `json:"prev_hash"`
}
