package sqlinline

const QSelectDonorDoc = `--sql a88529d4-456e-462c-900d-10bb37faf5d5
select to_jsonb(d) - 'naming_series'
from donors d
where d.name = $1::text;
`

const QSelectDonorHeader = `--sql 5e2b2a62-d088-44e8-ab48-7ceb83a631d8
select owner, creation
from donors
where name = $1::text;
`

const QSelectDonorStatusForUpdate = `--sql dac6d34c-2441-4055-9a2c-048e1015d43f
select status
from donors
where name = $1::text
for update;
`

const QUpdateDonorStatus = `--sql 28f56d79-9e3c-498c-9384-ee4f4a1fa469
update donors
set status = $2::text, modified = now()
where name = $1::text;
`

const QDeleteDonor = `--sql 53d45430-1457-4cc9-8469-523523c3f5e4
delete from donors
where name = $1::text;
`

const QSelectBranchAbbreviation = `--sql f30abfc6-22a4-4783-8a44-aaf5cc3dced8
select coalesce(custom_abbreviation, '')
from cost_centers
where name = $1::text;
`

const QDonorCNICTaken = `--sql 513c0330-127c-4713-8d73-8f65899e008c
select exists(
    select 1 from donors
    where cnic = $1::text and name <> $2::text
);
`

const QInsertDonor = `--sql 75c3aebc-4986-41ce-a1d4-333add7691ee
insert into donors(
  name, naming_series, donor_name, salutation, first_name, middle_name, last_name,
  organization, title, email, phone, mobile_no, donor_owner, status, donor_type,
  department, identification_type, cnic, branch, country, image, owner,
  creation, modified
)
values (
  $1::text, nullif($2::text, ''), $3::text, nullif($4::text, ''), nullif($5::text, ''),
  nullif($6::text, ''), nullif($7::text, ''), nullif($8::text, ''), nullif($9::text, ''),
  nullif($10::text, ''), nullif($11::text, ''), nullif($12::text, ''), nullif($13::text, ''),
  $14::text, nullif($15::text, ''), nullif($16::text, ''), nullif($17::text, ''),
  nullif($18::text, ''), nullif($19::text, ''), nullif($20::text, ''), nullif($21::text, ''),
  $22::text, now(), now()
);
`

const QInsertPlaceholderDonor = `--sql b94551d3-eadd-41f4-b036-b63fba2ece96
insert into donors(name, donor_name, donor_type, status, email, owner, creation, modified)
values ($1::text, $2::text, 'Individual Donors', 'New', $3::text, $4::text, now(), now())
on conflict (name) do nothing;
`

const QSelectDonorContact = `--sql 1a95f7ff-fffe-4266-840d-8dd2dc510f24
select coalesce(email, ''), unsubscribed
from donors
where name = $1::text;
`
