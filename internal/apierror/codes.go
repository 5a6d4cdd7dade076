package apierror

// Problem type URIs, used as the "type" member of every problem response
const (
	TypeValidation      = "urn:smallsteps:error:validation"
	TypeBadRequest      = "urn:smallsteps:error:bad_request"
	TypeInvalidID       = "urn:smallsteps:error:invalid_id"
	TypeFutureTimestamp = "urn:smallsteps:error:future_timestamp"
	TypeUnauthorized    = "urn:smallsteps:error:unauthorized"
	TypeForbidden       = "urn:smallsteps:error:forbidden"
	TypeNotFound        = "urn:smallsteps:error:not_found"
	TypeConflict        = "urn:smallsteps:error:conflict"
	// TypeKidLimit is a conflict: the account already has the maximum number of kids
	TypeKidLimit  = "urn:smallsteps:error:kid_limit"
	TypeRateLimit = "urn:smallsteps:error:rate_limit"
	TypeInternal  = "urn:smallsteps:error:internal"
)

const (
	TitleValidation      = "Validation Error"
	TitleBadRequest      = "Bad Request"
	TitleInvalidID       = "Invalid Identifier"
	TitleFutureTimestamp = "Future Timestamp Not Allowed"
	TitleUnauthorized    = "Authentication Required"
	TitleForbidden       = "Permission Denied"
	TitleNotFound        = "Resource Not Found"
	TitleConflict        = "Resource Conflict"
	TitleKidLimit        = "Kid Limit Reached"
	TitleRateLimit       = "Rate Limit Exceeded"
	TitleInternal        = "Internal Server Error"
)

// Client action hints carried in the "action" member
const (
	ActionAuthenticate = "authenticate"
	ActionRemoveKid    = "remove_kid"
)
