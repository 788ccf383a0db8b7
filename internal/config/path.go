package config

const (
	//? These paths must match the routes served by the posts API

	APIPostsPath = "/api/posts"
	APIPostPath  = APIPostsPath + "/"

	DefaultFragmentFileName = "fragment"
	DefaultConfigFileName   = "notedesk.yaml"
	DotEnvFileName          = ".env"
)
