package rbac

// Permission codes, namespaced area:resource:action. This catalog is the
// contract between the administrative seeding step and the guard; unknown
// codes are simply ungranted, never an error.
const (
	PermCatalogRead   = "catalog:read"
	PermCatalogManage = "catalog:manage"

	PermMotherCreate = "maternity:mother:create"
	PermMotherRead   = "maternity:mother:read"
	PermMotherUpdate = "maternity:mother:update"

	PermDeliveryCreate    = "maternity:delivery:create"
	PermDeliveryRead      = "maternity:delivery:read"
	PermDeliveryUpdateOwn = "maternity:delivery:update_own"
	PermDeliveryUpdateAll = "maternity:delivery:update_all"

	PermIVEManage           = "maternity:ive:manage"
	PermComplicationManage  = "maternity:complication:manage"
	PermContraceptiveManage = "maternity:contraceptive:manage"

	PermNewbornCreate          = "neonatal:rn:create"
	PermNewbornRead            = "neonatal:rn:read"
	PermNewbornUpdateImmediate = "neonatal:rn:update_immediate"
	PermTamizajeManage         = "neonatal:tamizaje:manage"
	PermDischargeManage        = "neonatal:discharge:manage"

	PermReportGenerateREM = "report:generate_rem"
	PermReportExportData  = "report:export_data"

	PermAlertRead    = "alert:read"
	PermAlertResolve = "alert:resolve"

	PermAuditRead = "compliance:audit:read"

	PermUserManage = "core:user:manage"
	PermRoleManage = "core:role:manage"
)

// BuiltinPermissions is the fixed permission catalog installed by the seeder.
var BuiltinPermissions = []Permission{
	{Code: PermCatalogRead, Name: "Consultar Catálogos", Description: "Consultar listas estandarizadas como Grupos de Robson o complicaciones.", Area: "catalog", Active: true},
	{Code: PermCatalogManage, Name: "Gestionar Catálogos", Description: "Crear, modificar o eliminar clasificaciones estandarizadas.", Area: "catalog", Active: true},
	{Code: PermMotherCreate, Name: "Crear Madre Paciente", Description: "Registrar nuevos ingresos de madres.", Area: "maternity", Active: true},
	{Code: PermMotherRead, Name: "Consultar Madre Paciente", Description: "Consultar antecedentes y datos de la paciente.", Area: "maternity", Active: true},
	{Code: PermMotherUpdate, Name: "Actualizar Madre Paciente", Description: "Modificar datos demográficos o antecedentes.", Area: "maternity", Active: true},
	{Code: PermDeliveryCreate, Name: "Registrar Parto", Description: "Registrar un nuevo evento de parto.", Area: "maternity", Active: true},
	{Code: PermDeliveryRead, Name: "Consultar Parto", Description: "Consultar datos de partos.", Area: "maternity", Active: true},
	{Code: PermDeliveryUpdateOwn, Name: "Actualizar Parto (Propio/Turno)", Description: "Modificar solo registros de partos propios o creados en su turno.", Area: "maternity", Active: true},
	{Code: PermDeliveryUpdateAll, Name: "Actualizar Parto (Todos)", Description: "Modificar cualquier registro de parto sin restricción de turno.", Area: "maternity", Active: true},
	{Code: PermIVEManage, Name: "Gestionar IVE", Description: "Registrar y modificar atenciones de IVE, incluyendo acompañamiento.", Area: "maternity", Active: true},
	{Code: PermComplicationManage, Name: "Gestionar Complicaciones", Description: "Registrar complicaciones como HPP o Preeclampsia.", Area: "maternity", Active: true},
	{Code: PermContraceptiveManage, Name: "Gestionar Anticoncepción", Description: "Registrar el método anticonceptivo al alta.", Area: "maternity", Active: true},
	{Code: PermNewbornCreate, Name: "Registrar Recién Nacido", Description: "Registrar un Recién Nacido.", Area: "neonatology", Active: true},
	{Code: PermNewbornRead, Name: "Consultar Recién Nacido", Description: "Consultar el registro del RN y su trazabilidad.", Area: "neonatology", Active: true},
	{Code: PermNewbornUpdateImmediate, Name: "Registrar Datos Inmediatos RN", Description: "Registrar APGAR, contacto piel a piel, y profilaxis.", Area: "neonatology", Active: true},
	{Code: PermTamizajeManage, Name: "Gestionar Tamizaje", Description: "Registrar y modificar tamizajes: Metabólico, Auditivo, Cardiopatía.", Area: "neonatology", Active: true},
	{Code: PermDischargeManage, Name: "Gestionar Alta Neonatal", Description: "Registrar egreso y tipo de alimentación al alta.", Area: "neonatology", Active: true},
	{Code: PermReportGenerateREM, Name: "Generar Reporte REM", Description: "Generación automática del reporte REM BS22.", Area: "reports", Active: true},
	{Code: PermReportExportData, Name: "Exportar Datos", Description: "Exportar la data cruda a Excel.", Area: "reports", Active: true},
	{Code: PermAlertRead, Name: "Visualizar Alertas", Description: "Visualizar alertas de datos incompletos o críticos.", Area: "alerts", Active: true},
	{Code: PermAlertResolve, Name: "Resolver Alertas", Description: "Marcar alertas como resueltas.", Area: "alerts", Active: true},
	{Code: PermAuditRead, Name: "Consultar Auditoría", Description: "Consultar el registro de auditoría de acciones.", Area: "compliance", Active: true},
	{Code: PermUserManage, Name: "Gestionar Usuarios", Description: "Crear, editar y eliminar usuarios.", Area: "core", Active: true},
	{Code: PermRoleManage, Name: "Gestionar Roles", Description: "Administrar roles, perfiles y permisos.", Area: "core", Active: true},
}

// BuiltinRoles describes the five clinical roles installed by the seeder.
var BuiltinRoles = []Role{
	{Name: RoleMatronaClinica, Description: "Matrona Clínica - registra datos del parto y recién nacido; solo modifica registros de su turno."},
	{Name: RoleSupervisorJefe, Description: "Supervisor/Jefe de Área - acceso completo, consulta reportes y estadísticas."},
	{Name: RoleMedico, Description: "Médico(a) - consulta información clínica y gestiona complicaciones."},
	{Name: RoleEnfermero, Description: "Enfermero(a) - atención inmediata, procedimientos y tamizajes."},
	{Name: RoleAdministrativo, Description: "Administrativo(a) - datos de ingreso de la madre y coordinación de alta."},
}

// BuiltinGrants maps each role to the codes it holds. Note the update
// asymmetry on deliveries: matrona_clinica holds update_own and must pass the
// object-level shift check; supervisor and medico hold update_all and skip it.
var BuiltinGrants = map[RoleName][]string{
	RoleMatronaClinica: {
		PermCatalogRead,
		PermMotherCreate, PermMotherRead, PermMotherUpdate,
		PermDeliveryCreate, PermDeliveryRead, PermDeliveryUpdateOwn,
		PermIVEManage, PermComplicationManage, PermContraceptiveManage,
		PermNewbornCreate, PermNewbornRead, PermNewbornUpdateImmediate,
		PermTamizajeManage, PermDischargeManage,
		PermAlertRead,
	},
	RoleSupervisorJefe: {
		PermCatalogRead, PermCatalogManage,
		PermUserManage, PermRoleManage,
		PermMotherCreate, PermMotherRead, PermMotherUpdate,
		PermDeliveryCreate, PermDeliveryRead, PermDeliveryUpdateAll,
		PermIVEManage, PermComplicationManage, PermContraceptiveManage,
		PermNewbornCreate, PermNewbornRead, PermNewbornUpdateImmediate,
		PermTamizajeManage, PermDischargeManage,
		PermReportGenerateREM, PermReportExportData,
		PermAlertRead, PermAlertResolve,
		PermAuditRead,
	},
	RoleMedico: {
		PermCatalogRead,
		PermMotherRead, PermMotherUpdate,
		PermDeliveryRead, PermDeliveryUpdateAll,
		PermComplicationManage, PermContraceptiveManage,
		PermNewbornRead, PermTamizajeManage, PermDischargeManage,
		PermAlertRead,
	},
	RoleEnfermero: {
		PermCatalogRead,
		PermMotherRead,
		PermDeliveryRead,
		PermNewbornRead, PermNewbornUpdateImmediate,
		PermTamizajeManage, PermDischargeManage,
		PermAlertRead,
	},
	RoleAdministrativo: {
		PermCatalogRead,
		PermMotherCreate, PermMotherRead, PermMotherUpdate,
		PermDeliveryRead,
		PermNewbornRead, PermDischargeManage,
		PermAlertRead,
	},
}
