package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "roombook.v1.BookingService"

type BookingServiceServer interface {
	BookMeeting(context.Context, *BookMeetingRequest) (*MeetingResponse, error)
	UpdateMeeting(context.Context, *UpdateMeetingRequest) (*MeetingResponse, error)
	CancelMeeting(context.Context, *CancelMeetingRequest) (*Empty, error)
	ListBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
	GetBooking(context.Context, *GetBookingRequest) (*BookingResponse, error)
	RegisterSeat(context.Context, *RegisterSeatRequest) (*SeatRegistrationResponse, error)
	CancelSeat(context.Context, *CancelSeatRequest) (*Empty, error)
	SeatStatistics(context.Context, *SeatStatisticsRequest) (*SeatStatisticsResponse, error)
	SearchRooms(context.Context, *SearchRoomsRequest) (*RoomsResponse, error)
	AddRoom(context.Context, *AddRoomRequest) (*RoomResponse, error)
	UpdateRoom(context.Context, *UpdateRoomRequest) (*RoomResponse, error)
	DeleteRoom(context.Context, *RoomIDRequest) (*Empty, error)
	GetRoom(context.Context, *RoomIDRequest) (*RoomScheduleResponse, error)
}

var _ BookingServiceServer = (*BookingServer)(nil)

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("BookMeeting", BookingServiceServer.BookMeeting),
		unary("UpdateMeeting", BookingServiceServer.UpdateMeeting),
		unary("CancelMeeting", BookingServiceServer.CancelMeeting),
		unary("ListBookings", BookingServiceServer.ListBookings),
		unary("GetBooking", BookingServiceServer.GetBooking),
		unary("RegisterSeat", BookingServiceServer.RegisterSeat),
		unary("CancelSeat", BookingServiceServer.CancelSeat),
		unary("SeatStatistics", BookingServiceServer.SeatStatistics),
		unary("SearchRooms", BookingServiceServer.SearchRooms),
		unary("AddRoom", BookingServiceServer.AddRoom),
		unary("UpdateRoom", BookingServiceServer.UpdateRoom),
		unary("DeleteRoom", BookingServiceServer.DeleteRoom),
		unary("GetRoom", BookingServiceServer.GetRoom),
	},
	Streams: []grpc.StreamDesc{},
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(BookingServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}
