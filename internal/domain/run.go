package domain

// Invocation is the full outcome of one capability invocation, in the shape
// the machine-readable surface serializes.
type Invocation struct {
	CapabilityID string         `json:"tool_id"`
	FunctionName string         `json:"function_name"`
	Output       string         `json:"output"`
	Result       any            `json:"result"`
	Provided     map[string]any `json:"provided_context"`
	Resolved     map[string]any `json:"resolved_context"`
}

// InvocationRecord is one ledger entry: what ran and what it printed.
type InvocationRecord struct {
	CapabilityID string `json:"capability_id"`
	FunctionName string `json:"function_name"`
	Output       string `json:"readable_output"`
}
