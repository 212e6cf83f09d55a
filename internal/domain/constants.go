package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Transaction lifecycle. A row is created PENDING and moves exactly once to a
// terminal status (COMPLETED, FAILED or CANCELLED). An admin refund is the
// one transition past terminal: COMPLETED to REFUNDED.
const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
	TxCancelled = "CANCELLED"
	TxRefunded  = "REFUNDED"
)

const (
	MethodCard  = "CARD"
	MethodMpesa = "MPESA"
)

// Listing lifecycle. Paid listings sit in PAYMENT_PENDING until their
// transaction completes, then enter the moderation queue as PENDING.
const (
	ListingPaymentPending = "PAYMENT_PENDING"
	ListingPending        = "PENDING"
	ListingActive         = "ACTIVE"
	ListingRejected       = "REJECTED"
	ListingExpired        = "EXPIRED"
)

const (
	DiscountPercentage = "PERCENTAGE_DISCOUNT"
	DiscountFixed      = "FIXED_AMOUNT"
	DiscountExtraDays  = "EXTRA_DAYS"
)

const (
	PlanFree     = "FREE"
	PlanFeatured = "FEATURED"
	PlanPremium  = "PREMIUM"
)

const (
	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)

const (
	PurposeListings = "listings"
	PurposeAvatars  = "avatars"
	PurposeChat     = "chat"
)

const (
	ConditionNew  = "NEW"
	ConditionUsed = "USED"
)

const (
	ReportOpen     = "OPEN"
	ReportResolved = "RESOLVED"
)
