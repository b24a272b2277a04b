package model

// CatalogRecord is one authoritative entry of a catalog. Only AssignedResource
// is ever changed, and only by a reconciliation policy.
type CatalogRecord struct {
	Identifier       string `json:"identifier"`              // уникальный ключ (Item ID)
	SecondaryCode    string `json:"secondaryCode,omitempty"` // артикул, может содержать "(...)"
	DisplayName      string `json:"displayName"`             // наименование
	AssignedResource string `json:"assignedResource,omitempty"`
}

// Mode selects which tiers the matcher may use.
type Mode string

const (
	IdentifierFirst Mode = "identifier" // все уровни, начиная с точного ID
	NameOnly        Mode = "name"       // без точных ID/артикула (заголовки от генератора)
)

// Tier names the strategy that produced a score.
type Tier string

const (
	TierNone       Tier = "none"
	TierIdentifier Tier = "identifier"
	TierCode       Tier = "code"
	TierName       Tier = "name"
	TierPartial    Tier = "partial"
	TierCodeLookup Tier = "code_lookup"
)

// MatchResult is the matcher output. When Matched is false, Index/Record/Score
// still describe the best candidate seen (Index is -1 if nothing scored above 0).
type MatchResult struct {
	Matched bool          `json:"matched"`
	Index   int           `json:"index"`
	Record  CatalogRecord `json:"record"`
	Score   float64       `json:"score"`
	Tier    Tier          `json:"tier"`
}

// NoMatch is the result for an empty catalog or a query nothing relates to.
func NoMatch() MatchResult {
	return MatchResult{Index: -1, Tier: TierNone}
}

type AssignStatus string

const (
	StatusAssigned  AssignStatus = "assigned"
	StatusDuplicate AssignStatus = "duplicate" // запись уже получила ресурс в этом запуске
	StatusKept      AssignStatus = "kept"      // ресурс из прошлого запуска, без reassign
	StatusUnmatched AssignStatus = "unmatched"
)

// ImageAssignment is the outcome of one image file in a batch.
type ImageAssignment struct {
	File       string       `json:"file"`
	Stem       string       `json:"stem"`
	Status     AssignStatus `json:"status"`
	Identifier string       `json:"identifier,omitempty"`
	Previous   string       `json:"previous,omitempty"`
	Result     MatchResult  `json:"result"`
}

type AssignOptions struct {
	Workers  int  // параллельных матчеров; <=1: последовательно
	Reassign bool // перезаписывать ресурсы, оставшиеся от прошлых запусков
}

type ImageBatch struct {
	Assignments []ImageAssignment `json:"assignments"`
	Updated     int               `json:"updated"`
}

// TitleCorrection is the outcome of one generated title. Corrected always holds
// a usable title: the catalog name on match, the original otherwise.
type TitleCorrection struct {
	Original  string      `json:"original"`
	Corrected string      `json:"corrected"`
	Malformed bool        `json:"malformed,omitempty"`
	Result    MatchResult `json:"result"`
}
