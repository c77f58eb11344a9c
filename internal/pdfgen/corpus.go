package pdfgen

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Category names of the generated corpus.
const (
	Financial = "financial"
	Technical = "technical"
	HR        = "hr"
	Legal     = "legal"
	Research  = "research"
)

// Spec describes one generated document before rendering.
type Spec struct {
	Filename   string
	Category   string
	Title      string
	Paragraphs []string
}

type category struct {
	name      string
	filenames []string
	fill      func(r *rand.Rand, title string) []string
}

var categories = []category{
	{
		name: Financial,
		filenames: []string{
			"Q{quarter}_2024_Financial_Report.pdf",
			"Annual_Budget_{year}_Summary.pdf",
			"Revenue_Analysis_{month}_2024.pdf",
			"Expense_Report_Q{quarter}_2024.pdf",
			"Investment_Portfolio_Review_{year}.pdf",
			"Cash_Flow_Statement_{month}_2024.pdf",
			"Profit_Loss_Statement_Q{quarter}.pdf",
			"Financial_Forecast_2025.pdf",
			"Audit_Report_{year}.pdf",
			"Tax_Filing_Summary_2024.pdf",
		},
		fill: fillFinancial,
	},
	{
		name: Technical,
		filenames: []string{
			"API_Documentation_v{version}.pdf",
			"System_Architecture_Overview.pdf",
			"Database_Schema_Design.pdf",
			"Security_Best_Practices_Guide.pdf",
			"Deployment_Guide_AWS.pdf",
			"Performance_Optimization_Report.pdf",
			"Code_Review_Standards.pdf",
			"Microservices_Migration_Plan.pdf",
			"CI_CD_Pipeline_Setup.pdf",
			"Kubernetes_Configuration_Guide.pdf",
			"Data_Pipeline_Architecture.pdf",
			"Machine_Learning_Model_Specs.pdf",
			"Network_Infrastructure_Design.pdf",
			"Backup_Recovery_Procedures.pdf",
			"Load_Testing_Results_{date}.pdf",
		},
		fill: fillTechnical,
	},
	{
		name: HR,
		filenames: []string{
			"Employee_Handbook_2024.pdf",
			"Remote_Work_Policy.pdf",
			"Benefits_Overview_2024.pdf",
			"Performance_Review_Guidelines.pdf",
			"Onboarding_Checklist.pdf",
			"Leave_Policy_Update.pdf",
			"Compensation_Structure.pdf",
			"Training_Development_Program.pdf",
			"Diversity_Inclusion_Report.pdf",
			"Workplace_Safety_Guidelines.pdf",
			"Travel_Expense_Policy.pdf",
			"Code_of_Conduct.pdf",
			"Termination_Procedures.pdf",
			"Interview_Guidelines.pdf",
			"Promotion_Criteria.pdf",
		},
		fill: fillHR,
	},
	{
		name: Legal,
		filenames: []string{
			"Master_Service_Agreement_Template.pdf",
			"NDA_Standard_Form.pdf",
			"Software_License_Agreement.pdf",
			"Data_Processing_Agreement.pdf",
			"Terms_of_Service_v{version}.pdf",
			"Privacy_Policy_2024.pdf",
			"Vendor_Contract_Guidelines.pdf",
			"Intellectual_Property_Policy.pdf",
			"Litigation_Hold_Notice.pdf",
			"Compliance_Audit_Report.pdf",
			"GDPR_Compliance_Framework.pdf",
			"Employment_Agreement_Template.pdf",
			"Shareholder_Agreement.pdf",
			"Merger_Acquisition_Checklist.pdf",
			"Regulatory_Filing_Requirements.pdf",
		},
		fill: fillLegal,
	},
	{
		name: Research,
		filenames: []string{
			"Market_Analysis_Report_{industry}.pdf",
			"Competitive_Landscape_2024.pdf",
			"Customer_Survey_Results_Q{quarter}.pdf",
			"Industry_Trends_Forecast.pdf",
			"Product_Feasibility_Study.pdf",
			"User_Experience_Research.pdf",
			"Technology_Assessment_{tech}.pdf",
			"Emerging_Markets_Analysis.pdf",
			"Consumer_Behavior_Study.pdf",
			"Benchmarking_Report_2024.pdf",
			"Innovation_Pipeline_Review.pdf",
			"Patent_Landscape_Analysis.pdf",
			"Sustainability_Report_2024.pdf",
			"Digital_Transformation_Study.pdf",
			"AI_Implementation_Roadmap.pdf",
		},
		fill: fillResearch,
	},
}

var shortMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Categories returns the category names in generation order.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Filename derives the index-th filename of a category. Indexes past the
// template list get a numeric suffix so names stay unique.
func Filename(categoryName string, index int) (string, error) {
	c, ok := lookup(categoryName)
	if !ok {
		return "", fmt.Errorf("unknown category %q", categoryName)
	}
	return c.filename(index), nil
}

func (c category) filename(index int) string {
	tmpl := c.filenames[index%len(c.filenames)]
	name := strings.NewReplacer(
		"{quarter}", strconv.Itoa(index%4+1),
		"{year}", strconv.Itoa(2023+index%2),
		"{month}", shortMonths[index%12],
		"{version}", fmt.Sprintf("%d.%d", index%5+1, index%10),
		"{date}", fmt.Sprintf("2024%02d", index%12+1),
		"{industry}", []string{"Tech", "Healthcare", "Finance", "Retail"}[index%4],
		"{tech}", []string{"AI", "Cloud", "Blockchain", "IoT"}[index%4],
	).Replace(tmpl)
	if index >= len(c.filenames) {
		name = strings.TrimSuffix(name, ".pdf") + fmt.Sprintf("_%d.pdf", index/len(c.filenames)+1)
	}
	return name
}

// Title turns a generated filename into its document title.
func Title(filename string) string {
	return strings.ReplaceAll(strings.TrimSuffix(filename, ".pdf"), "_", " ")
}

// Corpus builds perCategory specs for every category. The same seed always
// yields the same corpus.
func Corpus(perCategory int, seed int64) []Spec {
	r := rand.New(rand.NewSource(seed))
	specs := make([]Spec, 0, perCategory*len(categories))
	for _, c := range categories {
		for i := 0; i < perCategory; i++ {
			name := c.filename(i)
			title := Title(name)
			specs = append(specs, Spec{
				Filename:   name,
				Category:   c.name,
				Title:      title,
				Paragraphs: c.fill(r, title),
			})
		}
	}
	return specs
}

// Generate renders the corpus into dir and returns the written paths.
func Generate(dir string, perCategory int, seed int64) ([]string, error) {
	if perCategory <= 0 {
		return nil, fmt.Errorf("documents per category must be positive, got %d", perCategory)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	specs := Corpus(perCategory, seed)
	paths := make([]string, 0, len(specs))
	for _, s := range specs {
		data, err := Render(s.Title, s.Paragraphs)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", s.Filename, err)
		}
		path := filepath.Join(dir, s.Filename)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", s.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func lookup(name string) (category, bool) {
	for _, c := range categories {
		if c.name == name {
			return c, true
		}
	}
	return category{}, false
}
