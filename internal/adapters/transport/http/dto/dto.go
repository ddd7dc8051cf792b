package dto

type SignupDTO struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpwd"`
	IsStaff  bool   `json:"is_staff"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmDTO struct {
	ResetToken  string `json:"reset_token"  validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpwd"`
}

type ProductCreateDTO struct {
	Name        string  `json:"name"  validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	IsActive    *bool   `json:"is_active"`
}

type OrderCreateDTO struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
	Status    string `json:"status"`
}
