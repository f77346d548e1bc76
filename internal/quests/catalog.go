package quests

import (
	"regexp"
)

// Quest is one scenario in the static catalog: a vulnerable code sample and
// an acceptance pattern the submitted fix must satisfy.
type Quest struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Difficulty     int      `json:"difficulty"`
	Category       string   `json:"category"`
	Points         int      `json:"points"`
	TimeEstimate   string   `json:"timeEstimate"`
	Scenario       string   `json:"scenario"`
	VulnerableCode string   `json:"vulnerableCode"`
	SolutionHints  []string `json:"solutionHints"`

	accept *regexp.Regexp
}

// AcceptsSolution evaluates the quest's acceptance pattern against a
// submitted solution.
func (q Quest) AcceptsSolution(solution string) bool {
	return q.accept.MatchString(solution)
}

var (
	catalog []Quest
	byID    = make(map[int]Quest)
)

func init() {
	catalog = seed()
	for _, q := range catalog {
		byID[q.ID] = q
	}
}

// All returns the full catalog in id order.
func All() []Quest {
	return catalog
}

// ByID looks up a quest by id.
func ByID(id int) (Quest, bool) {
	q, ok := byID[id]
	return q, ok
}

// Count returns the catalog size, the denominator of the security score.
func Count() int {
	return len(catalog)
}

func mustAccept(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + pattern)
}

func seed() []Quest {
	return []Quest{
		{
			ID:           1,
			Title:        "SQL Injection Fundamentals",
			Description:  "Learn to identify and prevent basic SQL injection vulnerabilities",
			Difficulty:   1,
			Category:     "web",
			Points:       150,
			TimeEstimate: "15 mins",
			Scenario:     "You're reviewing an e-commerce application's user authentication system. " +
				"Find and fix the SQL injection vulnerability in the login function.",
			VulnerableCode: "async function login(username, password) {\n" +
				"  const query = `SELECT * FROM users WHERE username = '${username}' AND password = '${password}'`;\n" +
				"  const result = await db.query(query);\n" +
				"  return result.rows[0];\n}",
			SolutionHints: []string{
				"Never concatenate user input directly into SQL queries",
				"Use parameterized queries or prepared statements",
				"Most database libraries have built-in protection",
			},
			accept: mustAccept(`db\.query\(.*\?.*\)|prepared|parameterized`),
		},
		{
			ID:           2,
			Title:        "XSS Attack Prevention",
			Description:  "Defend against Cross-Site Scripting attacks in web applications",
			Difficulty:   2,
			Category:     "web",
			Points:       250,
			TimeEstimate: "20 mins",
			Scenario:     "A blog platform allows users to post comments. The comments are displayed " +
				"without sanitization, making it vulnerable to XSS.",
			VulnerableCode: "function displayComment(comment) {\n" +
				"  document.getElementById('comment-section').innerHTML = comment;\n}",
			SolutionHints: []string{
				"Always sanitize user input before rendering",
				"Use textContent instead of innerHTML when possible",
				"Consider using DOMPurify or similar libraries",
			},
			accept: mustAccept(`innerHTML.*=.*(escape|encode|sanitize)|textContent|DOMPurify`),
		},
		{
			ID:           3,
			Title:        "JWT Authentication Security",
			Description:  "Secure your JWT implementation against common vulnerabilities",
			Difficulty:   2,
			Category:     "api",
			Points:       300,
			TimeEstimate: "25 mins",
			Scenario:     "Your API uses JWT for authentication but has several security weaknesses in the implementation.",
			VulnerableCode: "function verifyToken(token) {\n" +
				"  const decoded = jwt.decode(token);\n" +
				"  if (decoded.exp > Date.now() / 1000) {\n    return decoded;\n  }\n  return null;\n}",
			SolutionHints: []string{
				"Always verify the token signature",
				"Check the algorithm used matches your expectation",
				"Validate all standard claims (exp, iss, etc.)",
			},
			accept: mustAccept(`jwt\.verify|algorithm.*check|signature.*verif`),
		},
		{
			ID:           4,
			Title:        "S3 Bucket Misconfiguration",
			Description:  "Identify and fix common AWS S3 bucket security issues",
			Difficulty:   3,
			Category:     "cloud",
			Points:       400,
			TimeEstimate: "30 mins",
			Scenario:     "Your company's marketing site stores assets in an S3 bucket that's publicly " +
				"accessible and has no logging enabled.",
			VulnerableCode: `{"Effect": "Allow", "Principal": "*", "Action": "s3:GetObject", "Resource": "arn:aws:s3:::marketing-bucket/*"}`,
			SolutionHints: []string{
				"Never use Principal '*' in production",
				"Implement IP-based restrictions when possible",
				"Enable S3 access logging",
			},
			accept: mustAccept(`Principal.*\*.*deny|Condition|Logging`),
		},
		{
			ID:           5,
			Title:        "Secure Password Storage",
			Description:  "Implement proper password hashing and storage",
			Difficulty:   1,
			Category:     "web",
			Points:       200,
			TimeEstimate: "15 mins",
			Scenario:     "Your user database stores passwords in plaintext. Implement proper password hashing.",
			VulnerableCode: "function createUser(username, password) {\n" +
				"  db.query('INSERT INTO users (username, password) VALUES (?, ?)',\n    [username, password]);\n}",
			SolutionHints: []string{
				"Never store passwords in plaintext",
				"Use a modern hashing algorithm like bcrypt",
				"Include a salt and appropriate work factor",
			},
			accept: mustAccept(`bcrypt|argon2|scrypt|password_hash`),
		},
		{
			ID:           6,
			Title:        "CSRF Protection",
			Description:  "Implement defenses against Cross-Site Request Forgery",
			Difficulty:   2,
			Category:     "web",
			Points:       250,
			TimeEstimate: "20 mins",
			Scenario:     "Your banking application's money transfer endpoint is vulnerable to CSRF attacks.",
			VulnerableCode: "app.post('/transfer', (req, res) => {\n" +
				"  const { amount, toAccount } = req.body;\n  // Process transfer...\n});",
			SolutionHints: []string{
				"Generate unique tokens for each session",
				"Validate tokens on state-changing requests",
				"Consider SameSite cookie attributes",
			},
			accept: mustAccept(`csrf|sameSite|lax|strict|token.*validat`),
		},
		{
			ID:           7,
			Title:        "Insecure Direct Object Reference",
			Description:  "Prevent IDOR vulnerabilities in your API",
			Difficulty:   2,
			Category:     "api",
			Points:       300,
			TimeEstimate: "25 mins",
			Scenario:     "Your document sharing API exposes internal IDs in URLs, allowing users to " +
				"access unauthorized documents.",
			VulnerableCode: "app.get('/documents/:id', (req, res) => {\n" +
				"  const doc = db.getDocument(req.params.id);\n  res.send(doc);\n});",
			SolutionHints: []string{
				"Always verify the user has permission to access the resource",
				"Consider using UUIDs instead of sequential IDs",
				"Implement access control checks",
			},
			accept: mustAccept(`permission.*check|access.*control|verify.*user`),
		},
		{
			ID:           8,
			Title:        "Secure API Rate Limiting",
			Description:  "Implement protection against brute force and DDoS attacks",
			Difficulty:   3,
			Category:     "api",
			Points:       350,
			TimeEstimate: "30 mins",
			Scenario:     "Your login endpoint is vulnerable to brute force attacks with no rate limiting in place.",
			VulnerableCode: "app.post('/login', (req, res) => {\n" +
				"  // No rate limiting\n  const user = authenticate(req.body);\n" +
				"  if (user) {\n    res.send({ token: generateToken(user) });\n  } else {\n    res.status(401).send();\n  }\n});",
			SolutionHints: []string{
				"Limit requests per IP/user",
				"Implement exponential backoff for failed attempts",
				"Consider using Redis for distributed rate limiting",
			},
			accept: mustAccept(`rate.*limit|throttle|express-rate-limit`),
		},
	}
}
