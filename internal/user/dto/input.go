package dto

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,maildomain"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	FirstName string  `json:"first_name" validate:"required,min=2,max=50,personname"`
	LastName  string  `json:"last_name" validate:"required,min=2,max=50,personname"`
	Email     string  `json:"email" validate:"required,min=5,email,maildomain"`
	Password  string  `json:"password" validate:"required,min=6,max=20,hasdigit,hasletter"`
	Rut       *string `json:"rut"`
	Phone     *string `json:"phone" validate:"omitnil,number,min=8,max=15"`
	Address   *string `json:"address" validate:"omitnil,min=5"`
}

type UpdateProfileInput struct {
	FirstName string  `json:"first_name" validate:"required,min=2,max=50,personname"`
	LastName  string  `json:"last_name" validate:"required,min=2,max=50,personname"`
	Phone     *string `json:"phone" validate:"omitnil,number,min=8,max=15"`
	Address   *string `json:"address" validate:"omitnil,min=5"`
}
