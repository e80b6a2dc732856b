package sqlinline

const QInsertCertificate = `--sql 5f660b1d-1e1e-4152-80ad-9af83fb46f1a
insert into tax_exemption_certificates(
  name, certificate_number, donor, donor_address, donor_cnic__ntn, donation_date,
  date_of_issue, total_donation, payment_method, generated_timestamp, creation
)
values ($1::text, $2::text, nullif($3::text, ''), nullif($4::text, ''), nullif($5::text, ''),
        $6::date, $7::date, $8::numeric, nullif($9::text, ''), $10::timestamptz, now());
`

const QSelectCertificateByName = `--sql 56ece1f2-5aa1-464c-ad0a-788b5abcdf21
select name, certificate_number, coalesce(donor, ''), coalesce(donor_address, ''),
       coalesce(donor_cnic__ntn, ''), donation_date, date_of_issue, total_donation::float8,
       coalesce(payment_method, ''), generated_timestamp
from tax_exemption_certificates
where name = $1::text;
`

const QSelectCertificateByNumber = `--sql 68b5b06a-d26d-4fa5-9b81-3161ca5f62e2
select name, certificate_number, coalesce(donor, ''), coalesce(donor_address, ''),
       coalesce(donor_cnic__ntn, ''), donation_date, date_of_issue, total_donation::float8,
       coalesce(payment_method, ''), generated_timestamp
from tax_exemption_certificates
where certificate_number = $1::text
limit 1;
`
