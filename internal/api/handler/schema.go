package handler

// errorResponse is the envelope of the chatbot and predict endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope of auth failures.
type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type chatRequest struct {
	Query string `json:"query" validate:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Client-facing messages. Kept short and stable; details go to the log.
const (
	msgRegistered        = "Registration successful"
	msgLoggedIn          = "Login successful"
	msgInvalidInput      = "Invalid input"
	msgUserExists        = "User already exists"
	msgMissingCreds      = "Email and password are required"
	msgInvalidCreds      = "Invalid credentials"
	msgServerError       = "Server error"
	msgPromptRequired    = "Prompt required"
	msgChatbotError      = "Chatbot error"
	msgNoImage           = "No image uploaded"
	msgPredictionFailure = "Prediction service unavailable"
)
