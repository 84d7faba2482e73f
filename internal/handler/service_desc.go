package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are google.protobuf.Struct values, so the service needs no
// generated code; the field names are documented on each method.

const ServiceName = "clinic.v1.ClinicService"

type ClinicServiceServer interface {
	AddPatient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePatient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TrashPatient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPatients(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddDoctor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateDoctor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TrashDoctor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDoctors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AvailableSlots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BookAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RebookAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Schedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTrash(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreFromTrash(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EmptyTrash(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ ClinicServiceServer = (*Handler)(nil)

type unary func(ClinicServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unary) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(ClinicServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClinicServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("AddPatient", ClinicServiceServer.AddPatient),
		method("UpdatePatient", ClinicServiceServer.UpdatePatient),
		method("TrashPatient", ClinicServiceServer.TrashPatient),
		method("ListPatients", ClinicServiceServer.ListPatients),
		method("AddDoctor", ClinicServiceServer.AddDoctor),
		method("UpdateDoctor", ClinicServiceServer.UpdateDoctor),
		method("TrashDoctor", ClinicServiceServer.TrashDoctor),
		method("ListDoctors", ClinicServiceServer.ListDoctors),
		method("AvailableSlots", ClinicServiceServer.AvailableSlots),
		method("BookAppointment", ClinicServiceServer.BookAppointment),
		method("RebookAppointment", ClinicServiceServer.RebookAppointment),
		method("RemoveAppointment", ClinicServiceServer.RemoveAppointment),
		method("ListAppointments", ClinicServiceServer.ListAppointments),
		method("Schedule", ClinicServiceServer.Schedule),
		method("ListTrash", ClinicServiceServer.ListTrash),
		method("RestoreFromTrash", ClinicServiceServer.RestoreFromTrash),
		method("EmptyTrash", ClinicServiceServer.EmptyTrash),
		method("Summary", ClinicServiceServer.Summary),
	},
}

func Register(s grpc.ServiceRegistrar, srv ClinicServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
