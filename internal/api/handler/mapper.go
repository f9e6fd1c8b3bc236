package handler

import "github.com/99minutos/storefront/internal/core/domain"

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		IsAdmin:  a.IsAdmin,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, orderItemResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			PricePerUnit: l.UnitPrice.InexactFloat64(),
		})
	}
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount.InexactFloat64(),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Items:       items,
	}
}
