package api

// SignupRequest представляет запрос на регистрацию нового пользователя
type SignupRequest struct {
	Email    string `json:"email"`    // e-mail, уникальный
	Password string `json:"password"` // пароль в открытом виде, минимум 5 символов
	Name     string `json:"name"`     // отображаемое имя
}

// SignupResponse представляет ответ на успешную регистрацию
type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"` // UUID пользователя
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с токеном доступа
type LoginResponse struct {
	Token  string `json:"token"`  // JWT bearer token
	UserID string `json:"userId"` // UUID пользователя
}

// StatusResponse представляет текущий статус пользователя
type StatusResponse struct {
	Status string `json:"status"`
}

// UpdateStatusRequest представляет запрос на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string   `json:"message"`         // описание ошибки
	Data    []string `json:"data,omitempty"` // сообщения валидации по полям
}
