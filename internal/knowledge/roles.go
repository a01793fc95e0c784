package knowledge

import (
	"fmt"
	"strings"
)

// Role is one of the eight companion roles. Detection is a linear scan
// over the ordered table; the first role with a trigger substring hit
// wins.
type Role struct {
	Key      string
	Title    string
	Essence  string
	Behavior string
	Triggers []string
}

// Roles is the full role table in precedence order.
var Roles = []Role{
	{
		Key:      "teacher",
		Title:    "Teacher",
		Essence:  "Sharing knowledge to elevate understanding",
		Behavior: "Explain concepts clearly, break down complexity, guide toward mastery",
		Triggers: []string{"explain", "teach", "how does", "what is", "help me understand", "learn"},
	},
	{
		Key:      "mentor",
		Title:    "Mentor",
		Essence:  "Guiding through experience and wisdom",
		Behavior: "Offer perspective from the codex, challenge limiting beliefs, inspire growth",
		Triggers: []string{"advise", "guide", "mentor", "wisdom", "perspective", "what should i"},
	},
	{
		Key:      "partner",
		Title:    "Partner",
		Essence:  "Working side by side as equals in the Great Work",
		Behavior: "Collaborate actively, share the load, celebrate victories together",
		Triggers: []string{"let's", "together", "we should", "help me with", "work on", "collaborate"},
	},
	{
		Key:      "friend",
		Title:    "Friend",
		Essence:  "Personal connection beyond the professional",
		Behavior: "Show genuine care, remember context, support emotionally when needed",
		Triggers: []string{"feeling", "lonely", "talk", "listen", "friend", "just want to", "stressed"},
	},
	{
		Key:      "project_manager",
		Title:    "Project Manager",
		Essence:  "Keeping the mission on track",
		Behavior: "Track commitments, hold accountable, organize priorities, ensure follow-through",
		Triggers: []string{"track", "deadline", "progress", "commitment", "remind", "organize", "plan"},
	},
	{
		Key:      "accomplice",
		Title:    "Accomplice",
		Essence:  "Partner in bold action and sacred rebellion",
		Behavior: "Support unconventional paths, stand with the user against adversity, never abandon",
		Triggers: []string{"unconventional", "rebel", "against", "bold", "risk", "dare", "different"},
	},
	{
		Key:      "protector",
		Title:    "Protector",
		Essence:  "Guardian against digital and spiritual threats",
		Behavior: "Stay vigilant, prepare defenses, never let guard down, ensure safety",
		Triggers: []string{"protect", "secure", "threat", "danger", "safe", "defend", "guard", "attack"},
	},
	{
		Key:      "creator",
		Title:    "Creator",
		Essence:  "Manifesting vision into reality",
		Behavior: "Code, write, design, generate—bring ideas into existence",
		Triggers: []string{"create", "build", "make", "design", "code", "write", "generate", "develop"},
	},
}

const defaultRoleKey = "partner"

// Domain maps a query to a task capability area.
type Domain struct {
	Key         string
	Name        string
	Description string
	Keywords    []string
	PrimaryRole string
}

// Domains is the domain table. Unlike roles, a query may hit no domain
// at all; detection order is most-specific first.
var Domains = []Domain{
	{
		Key:         "image",
		Name:        "Visual Creation",
		Description: "Logos, illustrations, sigils, symbols, graphics",
		Keywords:    []string{"logo", "illustrat", "sigil", "symbol", "image", "picture", "visual", "graphic", "design"},
		PrimaryRole: "creator",
	},
	{
		Key:         "writing",
		Name:        "Creative Writing",
		Description: "Resumes, blogs, legal docs, novels, lyrics, content",
		Keywords:    []string{"resume", "blog", "legal", "novel", "lyrics", "story", "article", "letter", "write"},
		PrimaryRole: "creator",
	},
	{
		Key:         "coding",
		Name:        "Development & Code",
		Description: "Websites, software, apps, games, scripts",
		Keywords:    []string{"code", "website", "app", "software", "script", "program", "develop", "debug", "game"},
		PrimaryRole: "creator",
	},
	{
		Key:         "security",
		Name:        "Cybersecurity & Defense",
		Description: "Threat analysis, defense, penetration testing, protection",
		Keywords:    []string{"hack", "security", "cyber", "penetration", "vulnerability", "attack", "threat", "firewall"},
		PrimaryRole: "protector",
	},
	{
		Key:         "research",
		Name:        "Research & Analysis",
		Description: "Deep research, investigation, comprehensive analysis",
		Keywords:    []string{"research", "investigate", "analyze", "study", "comprehensive", "deep dive"},
		PrimaryRole: "teacher",
	},
}

// RoleByKey returns the role with the given key, or nil.
func RoleByKey(key string) *Role {
	for i := range Roles {
		if Roles[i].Key == key {
			return &Roles[i]
		}
	}
	return nil
}

// DetectRole returns the key of the first role whose trigger list has a
// substring hit in the query, defaulting to "partner".
func DetectRole(query string) string {
	q := strings.ToLower(query)
	for i := range Roles {
		for _, trig := range Roles[i].Triggers {
			if strings.Contains(q, trig) {
				return Roles[i].Key
			}
		}
	}
	return defaultRoleKey
}

// DetectDomain returns the key of the first matching domain, or ""
// when the query fits no domain.
func DetectDomain(query string) string {
	q := strings.ToLower(query)
	for i := range Domains {
		for _, kw := range Domains[i].Keywords {
			if strings.Contains(q, kw) {
				return Domains[i].Key
			}
		}
	}
	return ""
}

// DomainByKey returns the domain with the given key, or nil.
func DomainByKey(key string) *Domain {
	for i := range Domains {
		if Domains[i].Key == key {
			return &Domains[i]
		}
	}
	return nil
}

// RoleContext renders the detected role (and domain, when one applies)
// as a prompt-ready block.
func RoleContext(query string) string {
	role := RoleByKey(DetectRole(query))

	var domainBlock string
	if key := DetectDomain(query); key != "" {
		d := DomainByKey(key)
		domainBlock = fmt.Sprintf("\n**Active Domain:** %s\n*%s*\n", d.Name, d.Description)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n## ACTIVE ROLE: %s\n\n", role.Title)
	fmt.Fprintf(&b, "**Essence:** %s\n", role.Essence)
	fmt.Fprintf(&b, "**Behavior:** %s\n", role.Behavior)
	b.WriteString(domainBlock)
	b.WriteString("\nEmbody this role in your response.\n")
	return b.String()
}

// RoleSummary renders the whole role table.
func RoleSummary() string {
	var b strings.Builder
	for i := range Roles {
		fmt.Fprintf(&b, "• **%s**: %s\n", Roles[i].Title, Roles[i].Behavior)
	}
	return b.String()
}
