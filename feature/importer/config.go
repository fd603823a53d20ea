package importer

// Config holds CSV import settings.
type Config struct {
	// Delimiter separates CSV fields. Only the first character is used.
	Delimiter string `mapstructure:"delimiter" default:";"`
	// LedgerMethods lists the payment methods accepted from ledger payment exports.
	LedgerMethods []string `mapstructure:"ledger_methods" default:"BCA 1111,Kas Sementara"`
}
