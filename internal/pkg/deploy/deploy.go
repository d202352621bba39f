package deploy

// Deployment environments a service can run in
const (
	DEV     = "dev"
	STAGE   = "stage"
	PREPROD = "preprod"
	PROD    = "prod"
)
