package urls

// Repository is the project home, shown in the panel title bar
const Repository = "github.com/muurk/govee-panel"

// Issues is where doctor sends users whose relay checks keep failing
const Issues = "https://" + Repository + "/issues"
