package ladder

import "github.com/danielpatrickdp/field-governor/internal/certgate"

// #region curriculum
// TotalFields is the fixed curriculum size: 2 master fields followed by
// 21 extended fields.
const (
	TotalFields  = 23
	MasterFields = 2
)

// CurriculumEntry names one field and its threshold category.
type CurriculumEntry struct {
	Name     string
	Category certgate.Category
}

// DefaultCurriculum returns the fixed field ordering. The two masters
// (cross-site scripting and SQL injection) anchor the client-side and
// API-logic surfaces; the extended curriculum unlocks strictly in this
// index order once both masters certify.
func DefaultCurriculum() []CurriculumEntry {
	return []CurriculumEntry{
		{"xss_detection", certgate.CategoryClientSide},
		{"sqli_detection", certgate.CategoryAPILogic},
		{"csrf_detection", certgate.CategoryExtended},
		{"ssrf_detection", certgate.CategoryExtended},
		{"idor_detection", certgate.CategoryExtended},
		{"xxe_detection", certgate.CategoryExtended},
		{"rce_detection", certgate.CategoryExtended},
		{"lfi_detection", certgate.CategoryExtended},
		{"open_redirect_detection", certgate.CategoryExtended},
		{"auth_bypass_detection", certgate.CategoryExtended},
		{"jwt_flaw_detection", certgate.CategoryExtended},
		{"race_condition_detection", certgate.CategoryExtended},
		{"business_logic_detection", certgate.CategoryExtended},
		{"info_disclosure_detection", certgate.CategoryExtended},
		{"subdomain_takeover_detection", certgate.CategoryExtended},
		{"cors_misconfig_detection", certgate.CategoryExtended},
		{"graphql_flaw_detection", certgate.CategoryExtended},
		{"deserialization_detection", certgate.CategoryExtended},
		{"path_traversal_detection", certgate.CategoryExtended},
		{"prototype_pollution_detection", certgate.CategoryExtended},
		{"cache_poisoning_detection", certgate.CategoryExtended},
		{"websocket_hijack_detection", certgate.CategoryExtended},
		{"request_smuggling_detection", certgate.CategoryExtended},
	}
}

// #endregion curriculum

// #region field
// Field is one rung of the ladder.
type Field struct {
	ID            int
	Name          string
	Category      certgate.Category
	Master        bool
	Certified     bool
	Active        bool
	Locked        bool
	Precision     float64
	FPR           float64
	Dup           float64
	ECE           float64
	StabilityDays int
}

// #endregion field

// #region codes
// Result codes for unlock and activation attempts.
const (
	CodeOK                = "OK"
	CodeNotCertified      = "NOT_CERTIFIED"
	CodeStabilityGate     = "STABILITY_GATE"
	CodeMasterGate        = "MASTER_GATE"
	CodeOutOfOrder        = "OUT_OF_ORDER"
	CodeLocked            = "FIELD_LOCKED"
	CodeAlreadyActive     = "FIELD_OVERLAP"
	CodeAllFieldsComplete = "ALL_FIELDS_COMPLETE"
	CodeFieldOutOfRange   = "FIELD_OUT_OF_RANGE"
)

// #endregion codes

// #region result
// UnlockResult reports one unlock or activation attempt.
type UnlockResult struct {
	Allowed     bool
	Code        string
	NextFieldID int // valid only when Allowed and Code == OK
	Reason      string
}

// #endregion result
