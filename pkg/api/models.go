package api

// AdvanceResponse is the JSON response for POST /api/v1/advance.
type AdvanceResponse struct {
	Progressed bool          `json:"progressed"`
	Level      LevelResponse `json:"level"`
}

// LevelResponse summarizes one level of the hierarchy. The full CSR
// arrays are included only when requested with ?full=1 -- they can be
// large, and most callers only want the shape.
type LevelResponse struct {
	Index       int      `json:"index"`
	N           uint32   `json:"n"`
	M           uint32   `json:"m"`
	EdgeOffset  []uint32 `json:"edge_offset,omitempty"`
	Edges       []uint32 `json:"edges,omitempty"`
	EdgeWeights []uint32 `json:"edge_weights,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumLevels int           `json:"num_levels"`
	Finest    LevelResponse `json:"finest"`
	Coarsest  LevelResponse `json:"coarsest"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
