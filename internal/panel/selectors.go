package panel

// Page addresses on the target panel.
const (
	loginURL = "https://sistemamd.com.br/login?login_error"
	addURL   = "https://sistemamd.com.br/musicas/add"
)

// Login form selectors.
const (
	selLoginUsername = "input#login-username"
	selLoginPassword = "input#login-password"
	selLoginSubmit   = `button[type="submit"]`
)

// Registration form selectors.
const (
	selTitle        = "input#titulo"
	selISRC         = "input#isrc"
	selHolderSelect = "span.select2-selection"
	selHolderSearch = "input.select2-search__field"
	selAddHolder    = "button#AdicionarTitular"
	selSave         = "button#BtnSalvar"
)

// holderCheckboxes are clicked in this exact order. It follows the form's
// visual layout on the panel, not the numeric order of the ids; do not
// reorder.
var holderCheckboxes = []string{
	"input#titular_2",
	"input#titular_1",
	"input#titular_4",
	"input#titular_5",
	"input#titular_3",
}
