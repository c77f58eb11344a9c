package pdfgen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

func pick(r *rand.Rand, options ...string) string {
	return options[r.Intn(len(options))]
}

func between(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

func percent(r *rand.Rand, lo, hi float64) string {
	return strconv.FormatFloat(lo+r.Float64()*(hi-lo), 'f', 1, 64)
}

// grouped formats n with thousands separators.
func grouped(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func money(r *rand.Rand, lo, hi int) string {
	return "$" + grouped(between(r, lo, hi)*1000)
}

func fillFinancial(r *rand.Rand, title string) []string {
	months := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	return []string{
		"Executive Summary",
		fmt.Sprintf("This %s covers the period ending %s 2024. Total revenue reached %s, "+
			"representing a %s%% increase compared to the previous period. Operating expenses "+
			"were %s, resulting in a net profit margin of %s%%.",
			strings.ToLower(title), pick(r, months...), money(r, 5000, 50000), percent(r, 3, 25),
			money(r, 2000, 30000), percent(r, 8, 35)),
		"Key Highlights",
		"- Revenue growth driven primarily by expansion in enterprise sales.",
		fmt.Sprintf("- Cost optimization initiatives reduced overhead by %s%%.", percent(r, 5, 20)),
		fmt.Sprintf("- Cash reserves remain strong at %s.", money(r, 10000, 100000)),
		fmt.Sprintf("- Accounts receivable turnover improved to %d days.", between(r, 25, 60)),
		"Segment Performance",
		fmt.Sprintf("The %s division contributed %d%% of total revenue, with particularly strong "+
			"performance in %s. New customer acquisition increased by %d%%, while customer "+
			"retention remained stable at %s%%.",
			pick(r, "Enterprise", "SMB", "Consumer", "Government", "Healthcare"), between(r, 20, 45),
			pick(r, "North America", "EMEA", "APAC", "Latin America"), between(r, 10, 50), percent(r, 85, 98)),
		"Outlook",
		fmt.Sprintf("Management expects continued growth in the upcoming quarter, with projected "+
			"revenue of %s. Key initiatives include expansion of the sales team, investment in "+
			"research and development, and strategic partnerships in emerging markets.",
			money(r, 6000, 60000)),
	}
}

func fillTechnical(r *rand.Rand, title string) []string {
	return []string{
		"Technical Overview",
		fmt.Sprintf("This document describes the %s system architecture and implementation "+
			"details for the %s. The system is designed to handle %s requests per second with "+
			"99.9%% uptime.",
			pick(r, "OrderManagement", "CustomerPortal", "Analytics", "DataPipeline", "AuthService"),
			strings.ToLower(title), grouped(between(r, 5000, 100000))),
		"Architecture Components",
		"- Frontend: React application with TypeScript, hosted on a CloudFront CDN.",
		fmt.Sprintf("- API Layer: RESTful services built with %s, running on %s.",
			pick(r, "Spring Boot", "FastAPI", "Express", "Django", "Go Fiber"),
			pick(r, "EKS", "ECS", "Lambda", "EC2 Auto Scaling")),
		fmt.Sprintf("- Database: %s cluster with %d read replicas.",
			pick(r, "PostgreSQL", "MongoDB", "MySQL", "DynamoDB"), between(r, 2, 5)),
		"- Cache: Redis cluster for session management and hot data caching.",
		fmt.Sprintf("- Message Queue: %s for async processing.",
			pick(r, "RabbitMQ", "Apache Kafka", "AWS SQS", "Redis Streams")),
		"Security Considerations",
		fmt.Sprintf("All API endpoints require JWT authentication. Data is encrypted at rest using "+
			"AES-256 and in transit using TLS 1.3. Rate limiting is enforced at %d requests per "+
			"minute per user. SQL injection and XSS protections are implemented at the framework level.",
			between(r, 100, 1000)),
		"Scalability",
		fmt.Sprintf("The system uses horizontal scaling with auto-scaling groups. Current capacity "+
			"supports %s concurrent users. Database sharding is implemented by customer_id to "+
			"distribute load across %d shards.",
			grouped(between(r, 10000, 500000)), between(r, 4, 16)),
	}
}

func fillHR(r *rand.Rand, title string) []string {
	return []string{
		"Policy Overview",
		fmt.Sprintf("This document outlines the company %s, effective January 1, 2024. "+
			"All employees are expected to review and comply with these guidelines.", title),
		"Eligibility",
		fmt.Sprintf("This policy applies to all %s employees who have completed their %s-day "+
			"probationary period. Contractors and temporary workers should refer to their "+
			"specific agreements.",
			pick(r, "full-time", "exempt", "salaried"), pick(r, "30", "60", "90")),
		"Key Provisions",
		fmt.Sprintf("- Employees are entitled to %d days of paid time off annually.", between(r, 15, 30)),
		"- Health insurance coverage includes medical, dental, and vision.",
		fmt.Sprintf("- 401(k) matching up to %s%% of base salary.", pick(r, "3", "4", "5", "6")),
		fmt.Sprintf("- Professional development budget of $%s per year.", grouped(between(r, 1000, 5000))),
		"- Flexible work arrangements are available upon manager approval.",
		"Compliance Requirements",
		fmt.Sprintf("Employees must complete mandatory training within %s days of hire. Annual "+
			"compliance certifications are required by December 31st. Violations may result in "+
			"disciplinary action up to and including termination.", pick(r, "30", "60", "90")),
		"Questions and Support",
		fmt.Sprintf("For questions regarding this policy, contact HR at hr@company.com or extension %d.",
			between(r, 1000, 9999)),
	}
}

func fillLegal(r *rand.Rand, title string) []string {
	companies := []string{"Acme Corporation", "TechVentures Inc.", "Global Solutions Ltd.", "Innovation Partners"}
	return []string{
		"AGREEMENT",
		fmt.Sprintf("This %s (\"Agreement\") is entered into as of January 15, 2024 by and between "+
			"%s (\"Company\") and %s (\"Counterparty\").",
			title, pick(r, companies...), pick(r, companies[1:]...)),
		"1. DEFINITIONS",
		"\"Confidential Information\" means any non-public information disclosed by either party, " +
			"including but not limited to trade secrets, business plans, customer data, and " +
			"technical specifications.",
		"2. TERM AND TERMINATION",
		fmt.Sprintf("This Agreement shall commence on the Effective Date and continue for a period of "+
			"%s years, unless earlier terminated. Either party may terminate with %s days written "+
			"notice. Upon termination, all rights granted hereunder shall cease.",
			pick(r, "1", "2", "3", "5"), pick(r, "30", "60", "90")),
		"3. LIMITATION OF LIABILITY",
		fmt.Sprintf("IN NO EVENT SHALL EITHER PARTY BE LIABLE FOR ANY INDIRECT, INCIDENTAL, SPECIAL, "+
			"CONSEQUENTIAL, OR PUNITIVE DAMAGES. Total liability shall not exceed %s or the fees "+
			"paid in the preceding 12 months, whichever is greater.", money(r, 100, 1000)),
		"4. GOVERNING LAW",
		fmt.Sprintf("This Agreement shall be governed by and construed in accordance with the laws "+
			"of the State of %s, without regard to conflict of law principles.",
			pick(r, "Delaware", "California", "New York", "Texas")),
	}
}

func fillResearch(r *rand.Rand, title string) []string {
	barriers := []string{"cost concerns", "lack of expertise", "regulatory uncertainty", "legacy systems"}
	return []string{
		"Research Summary",
		fmt.Sprintf("This %s examines %s in the %s sector. Data was collected from %s respondents "+
			"across %d geographic regions between Q1 2024 and Q3 2024.",
			strings.ToLower(title),
			pick(r, "digital adoption", "customer preferences", "market dynamics", "technology trends"),
			pick(r, "Technology", "Healthcare", "Financial Services", "Retail", "Manufacturing"),
			grouped(between(r, 500, 5000)), between(r, 3, 12)),
		"Key Findings",
		fmt.Sprintf("- %d%% of respondents indicated preference for digital-first solutions.", between(r, 45, 85)),
		fmt.Sprintf("- Market size is projected to reach $%d billion by 2027.", between(r, 50, 500)),
		fmt.Sprintf("- Growth rate of %s%% CAGR expected over the next 5 years.", percent(r, 8, 25)),
		fmt.Sprintf("- Primary barriers to adoption include %s and %s.", pick(r, barriers...), pick(r, barriers[1:]...)),
		"Methodology",
		fmt.Sprintf("The research employed a mixed-methods approach combining quantitative surveys and "+
			"qualitative interviews. Statistical analysis was performed using %s with a confidence "+
			"level of %s%%. The margin of error is +/- %s%%.",
			pick(r, "regression analysis", "ANOVA", "chi-square testing", "factor analysis"),
			pick(r, "90", "95", "99"), percent(r, 2, 5)),
		"Competitive Analysis",
		fmt.Sprintf("The market is dominated by %d leading players who collectively hold %d%% market "+
			"share. Key differentiators include pricing strategy, product innovation, and customer service.",
			between(r, 3, 7), between(r, 55, 80)),
		"Recommendations",
		"Based on the findings, we recommend: (1) prioritizing investment in core technology " +
			"infrastructure, (2) developing strategic partnerships with key industry players, and " +
			"(3) accelerating go-to-market initiatives to capture emerging opportunities.",
	}
}
