package api

import (
	"errors"
	"net/http"

	"pharma-market/internal/service"
	"pharma-market/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type apiError struct {
	status  int
	code    string
	message string
}

// errorTable maps service errors to responses. Messages are shown to end users
// as-is.
var errorTable = []struct {
	err error
	apiError
}{
	{service.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "رقم الهاتف أو كلمة المرور غير صحيحة"}},
	{service.ErrAccountNotApproved, apiError{http.StatusForbidden, "ACCOUNT_NOT_APPROVED", "الحساب غير مفعل"}},
	{service.ErrRequestPending, apiError{http.StatusForbidden, "REQUEST_PENDING", "طلبك قيد المراجعة من قبل الإدارة"}},
	{service.ErrRequestRejected, apiError{http.StatusForbidden, "REQUEST_REJECTED", "تم رفض طلب التسجيل الخاص بك"}},
	{service.ErrDuplicatePhone, apiError{http.StatusConflict, "DUPLICATE_PHONE", "رقم الهاتف مسجل بالفعل"}},
	{service.ErrExtraction, apiError{http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "فشل في تحليل البيانات. يرجى المحاولة مرة أخرى."}},
	{service.ErrNotFound, apiError{http.StatusNotFound, "NOT_FOUND", "العنصر غير موجود"}},
	{service.ErrEmptyOrder, apiError{http.StatusBadRequest, "EMPTY_ORDER", "لا توجد أصناف لهذا المخزن في السلة"}},
	{service.ErrInvoiceNotAllowed, apiError{http.StatusConflict, "INVOICE_NOT_ALLOWED", "الفاتورة متاحة للطلبات المكتملة فقط"}},
	{service.ErrInvalidDecision, apiError{http.StatusBadRequest, "INVALID_DECISION", "قرار غير صالح"}},
	{service.ErrUnauthorized, apiError{http.StatusUnauthorized, "UNAUTHORIZED", "يرجى تسجيل الدخول"}},
	{service.ErrForbidden, apiError{http.StatusForbidden, "FORBIDDEN", "غير مصرح لك بالوصول لهذه الصفحة"}},
}

var internalError = apiError{http.StatusInternalServerError, "INTERNAL", "حدث خطأ غير متوقع"}

func lookupError(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.apiError
		}
	}
	return internalError
}

// respondError writes the mapped error and aborts the request
func respondError(c *gin.Context, err error) {
	e := lookupError(err)
	if e.status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(e.status, gin.H{
		"error":   e.message,
		"code":    e.code,
		"details": err.Error(),
	})
}

// respondBadRequest reports a malformed request body or parameter
func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "بيانات الطلب غير صالحة",
		"code":    "INVALID_REQUEST",
		"details": err.Error(),
	})
}
