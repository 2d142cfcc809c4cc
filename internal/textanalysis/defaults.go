package textanalysis

// DefaultStopWords is the stop-word set applied during keyword extraction.
// It includes generic research-paper vocabulary ("propose", "demonstrate")
// that carries no search signal.
var DefaultStopWords = []string{
	"a", "an", "the", "is", "are", "was", "were", "of", "in", "on", "at",
	"for", "with", "and", "or", "to", "from", "by", "that", "this", "these",
	"those", "which", "what", "how", "when", "where", "why", "can", "could",
	"would", "should", "may", "might", "will", "shall", "must", "have", "has",
	"been", "being", "do", "does", "did", "doing", "done", "make", "made",
	"using", "used", "use", "based", "approach", "method", "technique",
	"paper", "work", "study", "research", "propose", "proposed", "present",
	"presented", "show", "shown", "shows", "demonstrate", "demonstrated",
}

// DefaultTechnicalTerms maps research domains to their fixed phrase lists.
// Matching is plain substring search against the lower-cased text.
var DefaultTechnicalTerms = []TermDictionary{
	{Domain: "software_engineering", Terms: []string{
		"software engineering", "code generation", "code synthesis", "program generation",
		"software development", "software architecture", "software testing", "refactoring",
		"requirements engineering", "design patterns", "software maintenance",
	}},
	{Domain: "systems", Terms: []string{
		"embedded system", "real-time system", "cyber-physical system", "distributed system",
		"operating system", "concurrent system", "parallel system", "safety-critical system",
		"system architecture", "system design", "system integration",
	}},
	{Domain: "formal_methods", Terms: []string{
		"formal verification", "model checking", "theorem proving", "formal specification",
		"temporal logic", "safety verification", "formal methods", "formal analysis",
	}},
	{Domain: "programming_languages", Terms: []string{
		"programming language", "compiler", "type system", "semantics", "parser",
		"interpreter", "domain-specific language", "program analysis", "static analysis",
	}},
	{Domain: "ai_ml", Terms: []string{
		"machine learning", "deep learning", "neural network", "transformer",
		"large language model", "reinforcement learning", "natural language processing",
		"computer vision", "agent-based system", "multi-agent",
	}},
	{Domain: "mbse", Terms: []string{
		"model-based systems engineering", "model transformation", "model-driven development",
		"sysml", "uml", "architecture description", "aadl", "osate", "model-to-code",
	}},
}
