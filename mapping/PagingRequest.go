package mapping

import (
	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/protocol"
)

// MapPagingRequestToDAOPagingRequest converts a protocol PagingRequest to the
// similarly structured PagingRequest in the dao package for use in database calls
func MapPagingRequestToDAOPagingRequest(i *protocol.PagingRequest) dao.PagingRequest {
	return dao.PagingRequest{PageNumber: i.PageNumber, PageSize: i.PageSize}
}
