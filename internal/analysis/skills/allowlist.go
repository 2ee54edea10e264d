package skills

// phraseSkills are matched by substring against the lower-cased raw text.
var phraseSkills = []string{
	"machine learning", "data structures", "object-oriented programming",
	"github actions", "gitlab ci", "ci/cd", "rest api", "graph ql", "graphq l",
	"unit testing", "test driven development", "next.js", "react native",
	"sql server", "windows server",
}

// tokenSkills are matched against normalised tokens.
var tokenSkills = newSet(
	"python", "java", "javascript", "typescript", "node", "react", "next",
	"fastapi", "flask", "django", "express",
	"tailwind", "html", "css", "sass",
	"git", "github", "gitlab",
	"linux", "macos", "windows",
	"docker", "kubernetes", "k8s", "nginx",
	"aws", "gcp", "azure", "cloud",
	"sql", "postgres", "mysql", "sqlite", "mongodb", "redis",
	"rest", "graphql", "oauth", "jwt", "api",
	"jenkins", "pytest", "unittest", "jest", "vitest", "playwright", "cypress",
	"pandas", "numpy", "scikit-learn", "sklearn", "tensorflow", "pytorch", "ml",
	"uvicorn", "gunicorn",
	"terraform", "ansible",
	"bash", "shell", "zsh", "powershell",
	"kafka", "rabbitmq",
	"langchain", "ollama", "openai",
)

// known is every string Extract can ever return.
var known = func() map[string]struct{} {
	s := newSet(phraseSkills...)
	for k := range tokenSkills {
		s[k] = struct{}{}
	}
	return s
}()

func newSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// IsKnown reports whether skill belongs to the allow-list, canonical forms
// included.
func IsKnown(skill string) bool {
	_, ok := known[skill]
	return ok
}
