package routes

const (
	Health = "/health"

	MyStatement      = "/api/v1/statements/me"
	TenantStatement  = "/api/v1/statements/tenants/{tenant_id}"
	LeaseStatement   = "/api/v1/statements/leases/{lease_id}"
	TenantRatings    = "/api/v1/ratings"
	CurrentInvoice   = "/api/v1/leases/{lease_id}/current-invoice"
	LeaseInvoices    = "/api/v1/leases/{lease_id}/invoices"
	SubmitPayment    = "/api/v1/payments"
	VerifyPayment    = "/api/v1/payments/{payment_id}/verify"
	RejectPayment    = "/api/v1/payments/{payment_id}/reject"
	WaterReadings    = "/api/v1/water/readings"
	WaterPostBills   = "/api/v1/water/post-bills"
)
