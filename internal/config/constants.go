package config

// Application constants
const (
	AppName = "safety-report"

	// Source schema
	DefaultTable        = "Test_table"
	DefaultDateColumn   = "3Review Date"
	DefaultRegionColumn = "7Region"

	// Rows between the title rows of consecutive tables on the Safety sheet
	DefaultBlockSpacing = 10

	// Workbook sheet names
	SheetAnalysis = "Safety Analysis"
	SheetSafety   = "Safety"
	SheetRawData  = "Raw Data"

	CombinedHeading = "COMBINED SAFETY ASSESSMENT"
	TotalLabel      = "Total"
	// TotalRegionLabel replaces a data region named TotalLabel so it cannot
	// be mistaken for the totals row
	TotalRegionLabel = "Total (region)"

	// DateLayout is how report dates are entered and displayed
	DateLayout = "1/2/2006"
)

// QuestionColumns are the reviewed questions, in report order
var QuestionColumns = []string{
	"P1PerpInformed",
	"P2ChInterviewed", "P3ChNotIntvw", "P4MaltrtIntvw",
	"P5AdultNotIntvwWhy", "P6NonMaltrtIntvw", "P7CollRel", "P8SU", "P9DV",
	"P10PH", "P11PHConcerns", "P12MH", "P13MHConcerns", "P14Edu",
	"P15EduConcerns", "P16Removed", "P17LinkedInv", "P18InvCaseConf",
	"P19Registry", "P20Time", "P21sdmtime", "P22mentalhealth",
	"P23additionalreports", "P24diligeff", "P25Invcasconf", "FE1SolFocusd",
	"FE2Mapping", "FE3HarmDanger", "FE4ChildPersp", "FE5FamNet",
	"FE6Threequest", "FE7Consultandinform", "FE8ConsultInformnxt", "SA1SA",
	"SA2SAChld", "SA3Reason", "SA4SftyId", "SA5Prot", "SA6SftyInd",
	"SA7Sfty", "SA8SftyAgrm", "SA9SftyAdq", "SA10Sftytim", "RA1RAAppr",
	"RA2CNarr", "RA3OverdAppr", "RA4FinalDec", "RA5OverdNarr",
	"SEIEvidSafeCare", "SE2SafeCarehealsaf", "SE3Safesleep",
	"SE34referrals", "SE35referralscaregivr", "SE36referralsmonitor",
}

// SafetyQuestion is a safety assessment question broken down by region
type SafetyQuestion struct {
	Column  string
	Heading string
}

// SafetyQuestions are pivoted by region on the Safety sheet
var SafetyQuestions = []SafetyQuestion{
	{"SA1SA", "SA1. Was the Safety Assessment completed on the appropriate household(s)?"},
	{"SA2SAChld", "SA2. Was safety assessed for all children in the household?"},
	{"SA3Reason", `SA3. If "No" to Question SA2, was the reason documented?`},
	{"SA4SftyId", "SA4. Were all safety threats identified for each child?"},
	{"SA5Prot", "SA5. Were the identified protective capacities documented during the contact(s) with the family?"},
	{"SA6SftyInd", "SA6. Were the indicated safety interventions appropriate for the identified threats?"},
	{"SA7Sfty", "SA7. Is the final safety finding correct/appropriate?"},
	{"SA8SftyAgrm", "SA8. Was a Child Safety Agreement completed according to policy?"},
	{"SA9SftyAdq", "SA9. If a Child Safety Agreement was completed, did it address the threats adequately?"},
	{"SA10Sftytim", "SA10. If a Child Safety Agreement was completed, was it completed timely?"},
}

// Regions always appear in the conformity tables, even without records
var Regions = []string{"Beech Street", "Kent Co.", "Sussex Co.", "UP"}
