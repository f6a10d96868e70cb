package model

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *AppError) Error() string {
	return e.Message
}
