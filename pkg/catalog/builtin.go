package catalog

// Default returns the built-in domain catalog. Used when no catalog
// file is configured.
func Default() *Catalog {
	return &Catalog{
		Domains: []Domain{
			{
				Name:        "source-control",
				Description: "Source control operations: commits, pull requests, repositories, cloning",
				Triggers:    []string{"github", "git", "repo", "repository", "pull request", "pr", "prs", "commit", "commits", "clone", "branch", "merge", "push"},
				Examples: []string{
					"get 5 commits from scimarketplace/externaldata",
					"are there any open pull requests in quote",
					"clone the addresssearch repository",
				},
				Operations: []Operation{
					{
						Name:        "list-commits",
						Description: "List recent commits for a repository",
						Triggers:    []string{"commit", "commits", "latest commits", "recent commits"},
						Params: []Param{
							{Name: "org", Type: ParamString, Required: true},
							{Name: "repo", Type: ParamString, Required: true},
							{Name: "count", Type: ParamInt, Default: "5"},
							{Name: "branch", Type: ParamString},
						},
					},
					{
						Name:        "list-pulls",
						Description: "List pull requests for a repository",
						Triggers:    []string{"pr", "prs", "pull request", "pull requests"},
						Params: []Param{
							{Name: "org", Type: ParamString, Required: true},
							{Name: "repo", Type: ParamString, Required: true},
							{Name: "state", Type: ParamEnum, Default: "open", Values: []string{"open", "closed", "all"}},
						},
					},
					{
						Name:        "clone-repo",
						Description: "Clone a repository",
						Triggers:    []string{"clone"},
						Params: []Param{
							{Name: "org", Type: ParamString, Required: true},
							{Name: "repo", Type: ParamString, Required: true},
							{Name: "branch", Type: ParamString},
						},
					},
				},
			},
			{
				Name:        "build-system",
				Description: "CI/CD build operations: build status, failed jobs, console logs, triggering builds",
				Triggers:    []string{"jenkins", "build", "builds", "job", "jobs", "ci", "cd", "pipeline", "deploy-all", "console", "deployment"},
				Examples: []string{
					"show failed jobs in deploy-all in the last 4 hours",
					"get me the last 5 builds from folder quote and sub folder RC1",
					"trigger a build for addresssearch",
				},
				Operations: []Operation{
					{
						Name:        "status-query",
						Description: "Query recent build statuses in a folder",
						Triggers:    []string{"status", "failed", "running", "builds", "jobs", "last", "recent"},
						Params: []Param{
							{Name: "folder", Type: ParamString, Required: true},
							{Name: "status", Type: ParamEnum, Default: "any", Values: []string{"failed", "success", "running", "aborted", "any"}},
							{Name: "window", Type: ParamDuration, Default: "24h"},
							{Name: "count", Type: ParamInt, Default: "5"},
						},
					},
					{
						Name:        "trigger-build",
						Description: "Start a build for a job",
						Triggers:    []string{"trigger", "start", "run", "kick off"},
						Params: []Param{
							{Name: "folder", Type: ParamString, Required: true},
							{Name: "job", Type: ParamString, Required: true},
						},
					},
					{
						Name:        "console-log",
						Description: "Fetch the console log of a build",
						Triggers:    []string{"console", "log", "logs", "output"},
						Params: []Param{
							{Name: "folder", Type: ParamString, Required: true},
							{Name: "job", Type: ParamString, Required: true},
							{Name: "build", Type: ParamInt},
						},
					},
					{
						Name:        "build-params",
						Description: "Show the parameters a build ran with",
						Triggers:    []string{"parameters", "params"},
						Params: []Param{
							{Name: "folder", Type: ParamString, Required: true},
							{Name: "job", Type: ParamString, Required: true},
							{Name: "build", Type: ParamInt},
						},
					},
				},
			},
			{
				Name:        "issue-tracker",
				Description: "Issue tracker operations: tickets, comments, sprints, searches",
				Triggers:    []string{"jira", "ticket", "tickets", "issue", "issues", "sprint", "story", "bug", "board"},
				Examples: []string{
					"show me ticket PLAT-1234",
					"get the comments on SCI-88",
					"search tickets about login failures",
				},
				Operations: []Operation{
					{
						Name:        "get-ticket",
						Description: "Fetch a ticket by key",
						Triggers:    []string{"show", "get", "view", "open"},
						Params: []Param{
							{Name: "key", Type: ParamString, Required: true},
						},
					},
					{
						Name:        "list-comments",
						Description: "List comments on a ticket",
						Triggers:    []string{"comment", "comments"},
						Params: []Param{
							{Name: "key", Type: ParamString, Required: true},
						},
					},
					{
						Name:        "search-tickets",
						Description: "Search tickets by text",
						Triggers:    []string{"search", "find", "look for"},
						Params: []Param{
							{Name: "text", Type: ParamString, Required: true},
							{Name: "project", Type: ParamString},
						},
					},
					{
						Name:        "add-comment",
						Description: "Add a comment to a ticket",
						Triggers:    []string{"add comment", "comment on"},
						Params: []Param{
							{Name: "key", Type: ParamString, Required: true},
							{Name: "body", Type: ParamString, Required: true},
						},
					},
				},
			},
			{
				Name:        "graph",
				Description: "Code graph queries: dependencies, impact analysis, relationships between classes",
				Triggers:    []string{"neo4j", "graph", "dependency", "dependencies", "impact", "affected", "depend", "depends", "upstream", "downstream"},
				Examples: []string{
					"which classes depend on UserService",
					"identify the dependencies of class CreateCyberRiskReportResponse",
					"what repositories are affected by changes to PaymentController",
				},
				Operations: []Operation{
					{
						Name:        "dependency-query",
						Description: "Find dependencies of a class or method",
						Triggers:    []string{"dependency", "dependencies", "depend", "depends"},
						Params: []Param{
							{Name: "class", Type: ParamString, Required: true},
							{Name: "direction", Type: ParamEnum, Default: "downstream", Values: []string{"upstream", "downstream", "both"}},
						},
					},
					{
						Name:        "impact-query",
						Description: "Find code impacted by changes to a class",
						Triggers:    []string{"impact", "affected", "blast radius"},
						Params: []Param{
							{Name: "class", Type: ParamString, Required: true},
						},
					},
					{
						Name:        "cypher-query",
						Description: "Run a raw graph query",
						Triggers:    []string{"cypher", "query"},
						Params: []Param{
							{Name: "query", Type: ParamString, Required: true},
						},
					},
				},
			},
			{
				Name:        "monitoring",
				Description: "Application monitoring: resource utilization, alerts, business transactions, health",
				Triggers:    []string{"appdynamics", "appd", "monitoring", "monitor", "alert", "alerts", "utilization", "usage", "transaction", "transactions", "cpu", "memory", "health"},
				Examples: []string{
					"show me resource utilization for SCI Market Place PROD",
					"what are the critical alerts in the last hour",
					"show me slow transactions for PaymentService",
				},
				Operations: []Operation{
					{
						Name:        "resource-query",
						Description: "Query server resource utilization",
						Triggers:    []string{"resource", "resources", "utilization", "usage", "cpu", "memory", "disk"},
						Params: []Param{
							{Name: "application", Type: ParamString, Required: true},
							{Name: "window", Type: ParamDuration, Default: "1h"},
						},
					},
					{
						Name:        "alert-query",
						Description: "Query recent alerts",
						Triggers:    []string{"alert", "alerts", "alarming"},
						Params: []Param{
							{Name: "application", Type: ParamString},
							{Name: "severity", Type: ParamEnum, Default: "any", Values: []string{"critical", "warning", "info", "any"}},
							{Name: "window", Type: ParamDuration, Default: "1h"},
						},
					},
					{
						Name:        "transaction-query",
						Description: "Query business transaction performance",
						Triggers:    []string{"transaction", "transactions", "slow", "response time"},
						Params: []Param{
							{Name: "application", Type: ParamString, Required: true},
							{Name: "window", Type: ParamDuration, Default: "1h"},
						},
					},
				},
			},
		},
	}
}
