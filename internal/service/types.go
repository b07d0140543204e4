package service

// CubeInfo is the listing view of one cube.
type CubeInfo struct {
	Name        string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Measures    []string `json:"measures"`
	Dimensions  []string `json:"dimensions"`
}

// AttributeInfo describes one logical attribute and its resolved physical
// column for the requested locale.
type AttributeInfo struct {
	Ref      string   `json:"ref"`
	Label    string   `json:"label,omitempty"`
	Locales  []string `json:"locales,omitempty"`
	Physical string   `json:"physical"`
}

// JoinInfo is the wire view of one join selected for a query.
type JoinInfo struct {
	Master string `json:"master"`
	Detail string `json:"detail"`
	Alias  string `json:"alias,omitempty"`
}

// SQLPlan is the output of query planning without execution: the statement,
// its bound arguments, and the joins it pulls in.
type SQLPlan struct {
	SQL   string        `json:"sql"`
	Args  []interface{} `json:"args"`
	Joins []JoinInfo    `json:"joins"`
}
