// pkg/model/schema.go
package model

// Kind is the declared primitive type of a column
type Kind int

const (
	// KindString holds free-form categorical text
	KindString Kind = iota
	// KindInt holds whole-number measures
	KindInt
	// KindFloat holds decimal measures
	KindFloat
	// KindBinary holds Yes/No flags stored as 1/0
	KindBinary
)

// String returns a readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// MissingStrategy declares how the cleaner resolves a missing value
type MissingStrategy int

const (
	// StrategyFillZero replaces missing values with the zero of the column kind
	StrategyFillZero MissingStrategy = iota
	// StrategyFillMode replaces missing values with the most frequent value
	StrategyFillMode
	// StrategyDropRow removes the whole row
	StrategyDropRow
)

// String returns a readable name for the strategy
func (s MissingStrategy) String() string {
	switch s {
	case StrategyFillZero:
		return "fill_zero"
	case StrategyFillMode:
		return "fill_mode"
	case StrategyDropRow:
		return "drop_row"
	default:
		return "unknown"
	}
}

// ColumnSpec declares the expected shape of a single column
type ColumnSpec struct {
	Name     string          // Normalized column name
	Kind     Kind            // Declared primitive type
	Required bool            // Whether the column must be present in the input
	Nullable bool            // Whether missing values are tolerated after cleaning
	Missing  MissingStrategy // How the cleaner resolves missing values
}

// Schema declares the expected flat-table layout for a pipeline run
type Schema struct {
	Identifier string       // Name of the key column
	Columns    []ColumnSpec // Ordered column specifications
}

// ColumnSpecByName returns the spec for a column, or nil if undeclared
func (s *Schema) ColumnSpecByName(name string) *ColumnSpec {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// RequiredColumns returns the names of all required columns
func (s *Schema) RequiredColumns() []string {
	var required []string
	for _, col := range s.Columns {
		if col.Required {
			required = append(required, col.Name)
		}
	}
	return required
}

// TelcoChurnSchema returns the fixed schema for the telco customer churn
// dataset. Names are the normalized forms (lowercase, underscores); the
// identifier is unique per customer. Only partner and dependents carry the
// Yes/No binary mapping; churn is persisted as-is in the fact table.
func TelcoChurnSchema() *Schema {
	return &Schema{
		Identifier: "customerid",
		Columns: []ColumnSpec{
			{Name: "customerid", Kind: KindString, Required: true, Missing: StrategyDropRow},
			{Name: "gender", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "seniorcitizen", Kind: KindInt, Required: true, Missing: StrategyFillZero},
			{Name: "partner", Kind: KindBinary, Required: true, Missing: StrategyFillZero},
			{Name: "dependents", Kind: KindBinary, Required: true, Missing: StrategyFillZero},
			{Name: "tenure", Kind: KindInt, Required: true, Missing: StrategyFillZero},
			{Name: "phoneservice", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "multiplelines", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "internetservice", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "onlinesecurity", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "onlinebackup", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "deviceprotection", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "techsupport", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "streamingtv", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "streamingmovies", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "contract", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "paperlessbilling", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "paymentmethod", Kind: KindString, Required: true, Missing: StrategyFillMode},
			{Name: "monthlycharges", Kind: KindFloat, Required: true, Missing: StrategyFillZero},
			{Name: "totalcharges", Kind: KindFloat, Required: true, Missing: StrategyFillZero},
			{Name: "churn", Kind: KindString, Required: true, Missing: StrategyFillMode},
		},
	}
}
