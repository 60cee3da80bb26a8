package db

// DefaultRoster is the initial office roster loaded by `taskbot db seed`.
// Names are the natural keys doers later bind their chat channels to.
var DefaultRoster = map[string]string{
	"EVAMEDALYNE LANGSTANG":       "Accounts",
	"RAJESH KUMAR THAKUR":         "Accounts",
	"ANISHA LYNGDOH":              "Admin",
	"ALVIN KHARBAMON":             "Admin",
	"KIRAN DAS":                   "Admin",
	"AIDAHUNLIN NALLE JYRWA":      "CRM",
	"FANNY":                       "CRM",
	"DORIS":                       "Designer",
	"MEWANKHRAW MAJAW":            "Designer",
	"SANJAY THAPA":                "Designer",
	"SICOVONTRITCHZ D THANGKHIEW": "Designer",
	"TITU BHOWMICK":               "Designer",
	"WANHUNLANG KHARSATI":         "Designer",
	"MONICA LYNGDOH":              "EA",
	"MOHAMMED SERAJ ANSARI":       "EA",
	"ROSHAN":                      "EA",
	"YUMNAM JACKSON SINGH":        "Foundation",
	"JENNIFER JYRWA":              "HR",
	"ANITA DORJEE":                "MIS",
	"EWAN HA I SHYLLA":            "Office Assistant",
	"BHAGYASHREE SINHA":           "Process Coordinator",
	"HIMANI":                      "Process Coordinator",
	"SAFIRALIN":                   "Receptionist",
	"BANTYNSHAIN LYNGDOH":         "Sales dept",
	"SHANLANG":                    "Tender Executive",
}
