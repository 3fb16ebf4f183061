package catalog

// serviceShapes maps a canonical action name to its shape.
type serviceShapes map[string]OperationShape

// staticTable is the build-time-generated-style operation shape table
// described in the spec's design notes: a hand-maintained projection of
// the AWS service model for the services this build ships SDK client
// bindings for (see internal/awsclient). Services outside this table
// still work through the reflection fallback in reflect_shapes.go.
//
// Only the fields the resolver and invoker actually need are modeled:
// whether each input is required, and (loosely) which response field
// carries the primary list. Optional fields that are commonly required
// in practice (e.g. Owners for DescribeImages) are still marked
// optional, matching 4.B's "the resolver does not invent them".
var staticTable = map[string]serviceShapes{
	"ec2": {
		"DescribeInstances": {Inputs: []InputField{
			{Name: "InstanceIds", Kind: KindList},
			{Name: "Filters", Kind: KindList},
		}, OutputListKey: "Reservations"},
		"DescribeVpcs": {Inputs: []InputField{
			{Name: "VpcIds", Kind: KindList},
			{Name: "Filters", Kind: KindList},
		}, OutputListKey: "Vpcs"},
		"DescribeSubnets": {Inputs: []InputField{
			{Name: "SubnetIds", Kind: KindList},
			{Name: "Filters", Kind: KindList},
		}, OutputListKey: "Subnets"},
		"DescribeSecurityGroups": {Inputs: []InputField{
			{Name: "GroupIds", Kind: KindList},
			{Name: "Filters", Kind: KindList},
		}, OutputListKey: "SecurityGroups"},
		"DescribeVolumes": {Inputs: []InputField{
			{Name: "VolumeIds", Kind: KindList},
			{Name: "Filters", Kind: KindList},
		}, OutputListKey: "Volumes"},
	},
	"ecs": {
		"ListClusters": {OutputListKey: "ClusterArns"},
		"ListServices": {Inputs: []InputField{
			{Name: "Cluster", Required: true, Kind: KindScalar},
		}, OutputListKey: "ServiceArns"},
		"ListTasks": {Inputs: []InputField{
			{Name: "Cluster", Required: true, Kind: KindScalar},
		}, OutputListKey: "TaskArns"},
		"DescribeTasks": {Inputs: []InputField{
			{Name: "Cluster", Required: true, Kind: KindScalar},
			{Name: "Tasks", Required: true, Kind: KindList},
		}, OutputListKey: "Tasks"},
		"DescribeServices": {Inputs: []InputField{
			{Name: "Cluster", Required: true, Kind: KindScalar},
			{Name: "Services", Required: true, Kind: KindList},
		}, OutputListKey: "Services"},
	},
	"iam": {
		"ListRoles":       {OutputListKey: "Roles"},
		"ListUsers":       {OutputListKey: "Users"},
		"ListGroups":      {OutputListKey: "Groups"},
		"ListPolicies":    {OutputListKey: "Policies"},
		"ListAccessKeys": {Inputs: []InputField{
			{Name: "UserName", Kind: KindScalar},
		}, OutputListKey: "AccessKeyMetadata"},
		"GetUser": {Inputs: []InputField{
			{Name: "UserName", Kind: KindScalar},
		}},
	},
	"lambda": {
		"ListFunctions": {OutputListKey: "Functions"},
		"GetFunction": {Inputs: []InputField{
			{Name: "FunctionName", Required: true, Kind: KindScalar},
		}},
		"GetFunctionUrlConfig": {Inputs: []InputField{
			{Name: "FunctionName", Required: true, Kind: KindScalar},
		}},
		"ListLayers": {OutputListKey: "Layers"},
	},
	"rds": {
		"DescribeDBInstances": {Inputs: []InputField{
			{Name: "DBInstanceIdentifier", Kind: KindScalar},
		}, OutputListKey: "DBInstances"},
		"DescribeDBClusters": {Inputs: []InputField{
			{Name: "DBClusterIdentifier", Kind: KindScalar},
		}, OutputListKey: "DBClusters"},
		"DescribeDBSnapshots": {Inputs: []InputField{
			{Name: "DBInstanceIdentifier", Kind: KindScalar},
		}, OutputListKey: "DBSnapshots"},
	},
	"s3": {
		"ListBuckets": {OutputListKey: "Buckets"},
		"ListObjectsV2": {Inputs: []InputField{
			{Name: "Bucket", Required: true, Kind: KindScalar},
		}, OutputListKey: "Contents"},
		"GetBucketLocation": {Inputs: []InputField{
			{Name: "Bucket", Required: true, Kind: KindScalar},
		}},
	},
	"batch": {
		"DescribeJobQueues": {OutputListKey: "JobQueues"},
		"ListJobs": {Inputs: []InputField{
			{Name: "JobQueue", Required: true, Kind: KindScalar},
		}, OutputListKey: "JobSummaryList"},
		"DescribeJobs": {Inputs: []InputField{
			{Name: "Jobs", Required: true, Kind: KindList},
		}, OutputListKey: "Jobs"},
	},
	"cloudwatch": {
		"DescribeAlarms":        {OutputListKey: "MetricAlarms"},
		"DescribeAlarmHistory":  {OutputListKey: "AlarmHistoryItems"},
		"ListMetrics":           {OutputListKey: "Metrics"},
	},
	"cloudwatchlogs": {
		"DescribeLogGroups":  {OutputListKey: "LogGroups"},
		"DescribeLogStreams": {Inputs: []InputField{
			{Name: "LogGroupName", Required: true, Kind: KindScalar},
		}, OutputListKey: "LogStreams"},
		"FilterLogEvents": {Inputs: []InputField{
			{Name: "LogGroupName", Required: true, Kind: KindScalar},
		}, OutputListKey: "Events"},
		"GetLogEvents": {Inputs: []InputField{
			{Name: "LogGroupName", Required: true, Kind: KindScalar},
			{Name: "LogStreamName", Required: true, Kind: KindScalar},
		}, OutputListKey: "Events"},
	},
	"costexplorer": {
		"GetCostAndUsage": {Inputs: []InputField{
			{Name: "TimePeriod", Required: true, Kind: KindStruct},
			{Name: "Granularity", Required: true, Kind: KindScalar},
			{Name: "Metrics", Required: true, Kind: KindList},
		}, OutputListKey: "ResultsByTime"},
	},
	"sts": {
		"GetCallerIdentity": {},
	},
	"eks": {
		"ListClusters": {OutputListKey: "clusters"},
		"DescribeCluster": {Inputs: []InputField{
			{Name: "Name", Required: true, Kind: KindScalar},
		}},
		"ListNodegroups": {Inputs: []InputField{
			{Name: "ClusterName", Required: true, Kind: KindScalar},
		}, OutputListKey: "nodegroups"},
		"DescribeNodegroup": {Inputs: []InputField{
			{Name: "ClusterName", Required: true, Kind: KindScalar},
			{Name: "NodegroupName", Required: true, Kind: KindScalar},
		}},
	},
	"ssm": {
		"DescribeParameters": {OutputListKey: "Parameters"},
		"GetParameters": {Inputs: []InputField{
			{Name: "Names", Required: true, Kind: KindList},
		}, OutputListKey: "Parameters"},
		"GetParameter": {Inputs: []InputField{
			{Name: "Name", Required: true, Kind: KindScalar},
		}},
	},
}
